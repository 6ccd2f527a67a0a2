package persistence

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// ErrInvalidCursor is returned for a cursor this store did not issue
var ErrInvalidCursor = shared.NewDomainError("INVALID_CURSOR", "Invalid page cursor")

// pageCursor is the keyset position after the last row of a page
type pageCursor struct {
	UpdatedAt time.Time `json:"u"`
	SKU       string    `json:"s"`
}

func encodeCursor(c pageCursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeCursor(s string) (pageCursor, error) {
	var c pageCursor
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, ErrInvalidCursor
	}
	if err := json.Unmarshal(data, &c); err != nil || c.SKU == "" {
		return c, ErrInvalidCursor
	}
	return c, nil
}

// applyPredicates adds WHERE clauses for predicates on whitelisted fields.
// Predicates on fields without a column are skipped: the grid re-checks
// every row locally, so a skipped predicate only widens the page.
func applyPredicates(db *gorm.DB, preds []shared.Predicate, columns map[string]string) (*gorm.DB, error) {
	for _, p := range preds {
		col, ok := columns[p.Field]
		if !ok {
			continue
		}
		switch p.Op {
		case shared.OpEq:
			db = db.Where(fmt.Sprintf("%s = ?", col), p.Value)
		case shared.OpGte:
			db = db.Where(fmt.Sprintf("%s >= ?", col), p.Value)
		case shared.OpLte:
			db = db.Where(fmt.Sprintf("%s <= ?", col), p.Value)
		case shared.OpContains:
			s, ok := p.Value.(string)
			if !ok {
				return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
					fmt.Sprintf("contains on %s needs a text value", p.Field))
			}
			if s == "" {
				continue
			}
			db = db.Where(fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col), "%"+escapeLike(cases.Lower(language.Und).String(s))+"%")
		default:
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
				fmt.Sprintf("unsupported operator %q", p.Op))
		}
	}
	return db, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
