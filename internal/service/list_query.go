package service

import "strings"

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	defaultSort      = "-createdAt"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"template":  "template",
}

// ListQuery selects a page of the owner's resumes.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Search string
}

func (q ListQuery) normalize(defaultLimit, maxLimit int) ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	q.Sort = strings.TrimSpace(q.Sort)
	if _, ok := sortColumns[strings.TrimPrefix(q.Sort, "-")]; !ok {
		q.Sort = defaultSort
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// orderClause maps the sort key to SQL; id breaks ties so pages stay stable.
func (q ListQuery) orderClause() string {
	direction := "ASC"
	key := q.Sort
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		key = key[1:]
	}
	return sortColumns[key] + " " + direction + ", id " + direction
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
