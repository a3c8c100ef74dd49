package upstream

import "time"

// Server-owned entities, decoded from the platform envelopes. The gateway
// renders and filters these but never mutates them locally; writes go back
// upstream and the affected query is refetched.

type Balance struct {
	Balance         float64    `json:"balance"`
	Currency        string     `json:"currency"`
	LastTopupAt     *time.Time `json:"lastTopupAt"`
	IsLow           bool       `json:"isLow"`
	OrderFee        float64    `json:"orderFee"`
	EstimatedOrders int64      `json:"estimatedOrders"`
}

type Transaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	BalanceBefore float64   `json:"balanceBefore"`
	BalanceAfter  float64   `json:"balanceAfter"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type TransactionsPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

type Merchant struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Country   string     `json:"country,omitempty"`
	Currency  string     `json:"currency"`
	Timezone  string     `json:"timezone,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type MerchantsPage struct {
	Merchants  []Merchant `json:"merchants"`
	Pagination Pagination `json:"pagination"`
}

type GroupMerchant struct {
	ID               string  `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	Balance          float64 `json:"balance"`
	IsActive         bool    `json:"isActive"`
	ParentMerchantID string  `json:"parentMerchantId,omitempty"`
}

type SubscriptionPlan struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Currency        string  `json:"currency"`
	DepositMinimum  float64 `json:"depositMinimum"`
	OrderFee        float64 `json:"orderFee"`
	MonthlyPrice    float64 `json:"monthlyPrice"`
	TrialDays       int     `json:"trialDays"`
	GracePeriodDays int     `json:"gracePeriodDays"`
	BankName        *string `json:"bankName"`
	BankAccount     *string `json:"bankAccount"`
	BankAccountName *string `json:"bankAccountName"`
}

type Driver struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Phone    *string    `json:"phone"`
	Email    string     `json:"email"`
	IsActive bool       `json:"isActive"`
	JoinedAt *time.Time `json:"joinedAt,omitempty"`
	Source   string     `json:"source,omitempty"`
}

type MenuCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CategoryID  string  `json:"categoryId,omitempty"`
	Category    string  `json:"category,omitempty"`
	IsActive    bool    `json:"isActive"`
	InStock     bool    `json:"inStock"`
}

type Menu struct {
	Merchant   Merchant       `json:"merchant"`
	Categories []MenuCategory `json:"categories"`
	Items      []MenuItem     `json:"items"`
}

type Recommendation struct {
	MenuID   string  `json:"menuId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// Profile carries the merchant settings the storefront pages consume,
// including the fee configuration the cart totals derive from.
type Profile struct {
	MerchantID           string  `json:"merchantId"`
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	Currency             string  `json:"currency"`
	Timezone             string  `json:"timezone,omitempty"`
	LogoURL              string  `json:"logoUrl,omitempty"`
	EnableTax            bool    `json:"enableTax"`
	TaxPercent           float64 `json:"taxPercent"`
	EnableServiceCharge  bool    `json:"enableServiceCharge"`
	ServiceChargePercent float64 `json:"serviceChargePercent"`
	EnablePackagingFee   bool    `json:"enablePackagingFee"`
	PackagingFeeAmount   float64 `json:"packagingFeeAmount"`
}

type AddonCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddonItem is the bulk-upload snapshot row: enough identity to run the
// two-path duplicate match.
type AddonItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CategoryID   string  `json:"addonCategoryId"`
	CategoryName string  `json:"addonCategoryName"`
	Price        float64 `json:"price"`
}
