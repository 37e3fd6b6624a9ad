package domain

type BankAccount struct {
	ID            string `json:"id"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	AccountType   string `json:"accountType"`
}

type Settings struct {
	TipsEnabled    bool          `json:"tipsEnabled"`
	TipPercentages []int         `json:"tipPercentages"`
	TaxEnabled     bool          `json:"taxEnabled"`
	TaxPercentage  int           `json:"taxPercentage"`
	BankAccounts   []BankAccount `json:"bankAccounts"`
	NumberOfTables int           `json:"numberOfTables"`
}
