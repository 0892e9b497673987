package domain

const (
	PeriodActive = "active"
	PeriodClosed = "closed"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const (
	TimeLayout = "2006-01-02T15:04:05.000Z"
	DateLayout = "2006-01-02"
)

type Product struct {
	ID        int64   `db:"id" json:"id"`
	OwnerID   string  `db:"owner_id" json:"-"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  *int64  `db:"quantity" json:"quantity"` // legacy; counts live in inventory records
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

// ProductPatch holds the scalar columns an update may touch.
type ProductPatch struct {
	Name     *string
	Price    *float64
	Quantity *int64
}

func (p ProductPatch) Empty() bool { return p.Name == nil && p.Price == nil && p.Quantity == nil }

type Category struct {
	ID          int64   `db:"id" json:"id"`
	OwnerID     string  `db:"owner_id" json:"-"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

type CategoryPatch struct {
	Name        *string
	Description *string
}

// ProductCategoryRow is one link joined with its category name.
type ProductCategoryRow struct {
	ProductID    int64  `db:"product_id"`
	CategoryID   int64  `db:"category_id"`
	CategoryName string `db:"category_name"`
}

type ProductImage struct {
	ID           int64  `db:"id"`
	ProductID    int64  `db:"product_id"`
	ImageURL     string `db:"image_url"`
	StoragePath  string `db:"storage_path"` // empty for images added by URL
	DisplayOrder int    `db:"display_order"`
	CreatedAt    string `db:"created_at"`
}

type ImageView struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

// ProductView is the flattened read shape of a product.
type ProductView struct {
	Product
	CategoryIDs   []int64     `json:"categoryIds"`
	CategoryNames []string    `json:"categoryNames"`
	Images        []ImageView `json:"images"`
}

type InventoryPeriod struct {
	ID        int64   `db:"id" json:"id"`
	OwnerID   string  `db:"owner_id" json:"-"`
	Name      string  `db:"name" json:"name"`
	StartDate string  `db:"start_date" json:"start_date"`
	EndDate   *string `db:"end_date" json:"end_date"`
	Status    string  `db:"status" json:"status"`
	Notes     *string `db:"notes" json:"notes"`
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}

type InventoryRecord struct {
	ID        int64   `db:"id" json:"id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	PeriodID  int64   `db:"period_id" json:"period_id"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	CountedAt string  `db:"counted_at" json:"counted_at"`
	Notes     *string `db:"notes" json:"notes"`
}

// RecordRow is a record joined with its product.
type RecordRow struct {
	InventoryRecord
	ProductName  string  `db:"product_name" json:"product_name"`
	ProductPrice float64 `db:"product_price" json:"product_price"`
}

// HistoryRow is a record joined with its period.
type HistoryRow struct {
	InventoryRecord
	PeriodName      string `db:"period_name" json:"period_name"`
	PeriodStartDate string `db:"period_start_date" json:"period_start_date"`
	PeriodStatus    string `db:"period_status" json:"period_status"`
}

// CurrentInventory is empty (nil Period) when no period is active.
type CurrentInventory struct {
	Period  *InventoryPeriod `json:"period"`
	Records []RecordRow      `json:"records"`
}

const (
	RowFailed   = "failed"
	RowSkipped  = "skipped"
	RowNotFound = "not_found"
	RowWarning  = "warning"
)

type RowMessage struct {
	Row     int    `json:"row"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ImportSummary struct {
	Created  int          `json:"created"`
	Failed   int          `json:"failed"`
	Skipped  int          `json:"skipped"`
	NotFound int          `json:"not_found"`
	Messages []RowMessage `json:"messages"`
}
