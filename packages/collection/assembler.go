package collection

import (
	"strconv"

	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
	"github.com/google/uuid"
)

// namespace seeds the deterministic ids of collections and items.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/abdul-hamid-achik/hitsheet"))

// ItemID returns the correlation id of the request compiled from sheet/row.
func ItemID(sheet string, row int) string {
	return uuid.NewSHA1(namespace, []byte(sheet+"\x00"+strconv.Itoa(row))).String()
}

// Link ties a compiled request back to the sheet row it came from.
type Link struct {
	ID    string
	Sheet string
	Row   int
	Name  string
}

// Linkage lists links in the order a runner executes the collection.
type Linkage []Link

// ByID indexes the linkage by item id.
func (l Linkage) ByID() map[string]Link {
	m := make(map[string]Link, len(l))
	for _, link := range l {
		m[link.ID] = link
	}
	return m
}

// Sheets returns the distinct sheet names in first-seen order.
func (l Linkage) Sheets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, link := range l {
		if !seen[link.Sheet] {
			seen[link.Sheet] = true
			out = append(out, link.Sheet)
		}
	}
	return out
}

type folder struct {
	item  *Item
	links Linkage
}

// Assembler groups request items into folders.
type Assembler struct {
	name    string
	auth    *Auth
	folders []*folder
	index   map[string]*folder
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithBearerToken attaches bearer auth to the collection and every request.
func WithBearerToken(token string) AssemblerOption {
	return func(a *Assembler) {
		a.auth = BearerAuth(token)
	}
}

func NewAssembler(name string, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		name:  name,
		index: make(map[string]*folder),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add appends item to its folder and records the link. The folder key is the
// normalised folder name, falling back to the sheet name; the first spelling
// seen becomes the folder's display name.
func (a *Assembler) Add(folderName, sheet string, row int, item *Item) Link {
	display := folderName
	key := schema.Normalize(folderName)
	if key == "" {
		display = sheet
		key = schema.Normalize(sheet)
	}

	f, ok := a.index[key]
	if !ok {
		f = &folder{item: &Item{Name: display}}
		a.index[key] = f
		a.folders = append(a.folders, f)
	}

	item.ID = ItemID(sheet, row)
	if a.auth != nil && item.Request != nil {
		item.Request.Auth = a.auth
	}
	f.item.Item = append(f.item.Item, item)

	link := Link{ID: item.ID, Sheet: sheet, Row: row, Name: item.Name}
	f.links = append(f.links, link)
	return link
}

// Len returns the number of requests added.
func (a *Assembler) Len() int {
	n := 0
	for _, f := range a.folders {
		n += len(f.links)
	}
	return n
}

// Build returns the collection and its linkage, flattened in folder creation
// order then append order.
func (a *Assembler) Build() (*Collection, Linkage) {
	c := &Collection{
		Info: Info{
			PostmanID: uuid.NewSHA1(namespace, []byte(a.name)).String(),
			Name:      a.name,
			Schema:    SchemaURL,
		},
		Item: []*Item{},
		Auth: a.auth,
	}
	var linkage Linkage
	for _, f := range a.folders {
		c.Item = append(c.Item, f.item)
		linkage = append(linkage, f.links...)
	}
	return c, linkage
}
