package site

// Site mirrors one row in the `site` table.  Domain is stored lower-case
// without a port; the resolver normalises request hosts the same way.
type Site struct {
	ID     uint64 `db:"id"     json:"id"`
	Domain string `db:"domain" json:"domain"`
	Name   string `db:"name"   json:"name"`
}
