package database

// WorkSnapshot carries the fetched fields of a work as returned by the
// remote client. A successful fetch replaces all of these on the stored row;
// a failed fetch replaces none of them.
type WorkSnapshot struct {
	Title            string
	Chapters         int64
	ExpectedChapters *int64 // nil = open-ended
	DateUpdated      string // DateLayout text
	DatePublished    string
	DateEdited       string
	Extra            map[string]string
}

type WorkRepository interface {
	GetWorkIDs() ([]int64, error)
	GetAllWorks() ([]Work, error)
	GetWork(id int64) (*Work, error)
	GetWorkCount() (int, error)

	CreateWork(id int64) error
	UpdateWork(id int64, snap WorkSnapshot) error
	UpdateWorkFetchError(id int64, desc string) error
	DeleteWork(id int64) error
}
