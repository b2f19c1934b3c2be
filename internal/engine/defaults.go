package engine

// Field is one row of the Inputs sheet.
type Field struct {
	Key         string
	Value       any
	Description string
}

// DefaultFields are the starting assumptions written into a new Inputs
// sheet, grouped the way the sheet presents them.
var DefaultFields = []Field{
	// Funnel & CAC
	{KeyOperatorCAC, 1000.0, "Marketing cost to acquire one free operator"},
	{KeyInvestorCAC, 200.0, "Marketing cost to acquire one investor (informational)"},
	{KeyMFChurnRate, 0.25, "Share of free users lost before market-fit"},
	{KeyConversionMFCF, 0.75, "Market-fit to company-fit conversion per period"},
	{KeyConversionCFReady, 0.3, "Company-fit to transaction-ready conversion per period"},
	{KeyConversionReadyGo, 0.1, "Transaction-ready to closed deal conversion per period"},

	// Pricing
	{KeyPriceMF, 0.0, "Price per market-fit user (informational)"},
	{KeyPriceCF, 0.0, "Price per company-fit user (informational)"},
	{KeyPriceReady, 50000.0, "Price per transaction-ready customer per period"},
	{KeyGoDealSize, 75000000.0, "Average closed deal size"},
	{KeyGoFee, 0.015, "Fee taken on each closed deal"},

	// Payroll & Hiring
	{KeySalarySDR, 8000.0, "SDR salary per period"},
	{KeySalaryCS, 10000.0, "Customer success salary per period"},
	{KeySalaryEng, 12000.0, "Engineer salary per period"},
	{KeySalaryAE, 12000.0, "Account executive salary per period"},
	{KeySalaryGA, 10000.0, "G&A salary per period"},
	{KeyCustomersPerCS, 20.0, "Customers one CS hire can cover"},
	{KeyCustomersPerEng, 40.0, "Customers one engineer can cover"},
	{KeyCustomersPerSDR, float64(DefaultCustomersPerSDR), "Customers one SDR can cover (at least one SDR)"},
	{KeyAEThreshold, float64(DefaultAEThreshold), "Customer count at which an AE is hired"},
	{KeyGAHeadcount, DefaultGAHeadcount, "Constant fractional G&A headcount"},

	// Marketing & Funding
	{KeyMarketingStart, 10000.0, "Marketing spend in the first month"},
	{KeyMarketingEnd, 30000.0, "Marketing spend in the last month and after"},
	{KeyFundingMonths, "7, 18", "Funding event months, comma separated"},
	{KeyFundingAmounts, "750000, 1250000", "Funding event amounts, comma separated"},
	{KeyCollectionUpfront, 0.7, "Share of revenue collected in the period it is earned"},

	// COGS %
	{KeyCOGSPct, 0.15, "Cost of goods sold as a share of revenue"},
}

// DefaultInputs returns a fresh copy of DefaultFields as Inputs.
func DefaultInputs() Inputs {
	in := make(Inputs, len(DefaultFields))
	for _, f := range DefaultFields {
		in[f.Key] = f.Value
	}
	return in
}

// Describe returns the Inputs-sheet description for key, or "".
func Describe(key string) string {
	for _, f := range DefaultFields {
		if f.Key == key {
			return f.Description
		}
	}
	return ""
}
