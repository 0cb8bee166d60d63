package core

// Required account codes. Every posting rule resolves its accounts through
// these codes, and each has a hard-coded template below so a posting never
// fails solely because the ledger is empty.
const (
	CodeCash            = "1000"
	CodeBank            = "1100"
	CodeCustomers       = "1200"
	CodeVATReceivable   = "1300"
	CodeSuppliers       = "2100"
	CodeVATPayable      = "2200"
	CodeSales           = "4000"
	CodeDiscountEarned  = "4100"
	CodePurchases       = "5000"
	CodeDiscountAllowed = "5100"
)

// AccountTemplate is the fallback definition used when a required account is
// referenced before anyone created it explicitly.
type AccountTemplate struct {
	Code string
	Name string
	Type AccountType
}

// RequiredAccounts is the minimal chart of accounts the posting engine needs.
var RequiredAccounts = []AccountTemplate{
	{Code: CodeCash, Name: "Cash", Type: Cash},
	{Code: CodeBank, Name: "Bank", Type: Bank},
	{Code: CodeCustomers, Name: "Customers", Type: Asset},
	{Code: CodeVATReceivable, Name: "VAT Receivable", Type: Asset},
	{Code: CodeSuppliers, Name: "Suppliers", Type: Liability},
	{Code: CodeVATPayable, Name: "VAT Payable", Type: Liability},
	{Code: CodeSales, Name: "Sales", Type: Revenue},
	{Code: CodeDiscountEarned, Name: "Discount Earned", Type: Revenue},
	{Code: CodePurchases, Name: "Purchases", Type: Expense},
	{Code: CodeDiscountAllowed, Name: "Discount Allowed", Type: Expense},
}

// TemplateFor returns the template for a required account code, or nil for
// codes outside the required set.
func TemplateFor(code string) *AccountTemplate {
	for i := range RequiredAccounts {
		if RequiredAccounts[i].Code == code {
			return &RequiredAccounts[i]
		}
	}
	return nil
}

// entityParentCode returns the shared roll-up account code for an entity side.
func entityParentCode(et EntityType) string {
	if et == EntitySupplier {
		return CodeSuppliers
	}
	return CodeCustomers
}
