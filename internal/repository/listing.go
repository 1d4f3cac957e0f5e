package repository

import (
	"fmt"
	"strings"

	"codearena/internal/listquery"
)

// condBuilder acumula condiciones WHERE con argumentos posicionales para
// los listados paginados construidos desde listquery.Query.
type condBuilder struct {
	conds []string
	args  []any
}

func (b *condBuilder) add(cond string, args ...any) {
	n := len(b.args)
	for i := range args {
		cond = strings.Replace(cond, "$?", fmt.Sprintf("$%d", n+i+1), 1)
	}
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// orderClause arma el ORDER BY validando la columna contra un mapa permitido;
// columnas fuera del mapa caen al fallback.
func orderClause(allowed map[string]string, sort *listquery.Sort, fallback string) string {
	if sort == nil {
		return " ORDER BY " + fallback
	}
	expr, ok := allowed[sort.Column]
	if !ok {
		return " ORDER BY " + fallback
	}
	dir := " ASC"
	if sort.Desc {
		dir = " DESC"
	}
	return " ORDER BY " + expr + dir
}

// pageArgs agrega LIMIT/OFFSET al final de la lista de argumentos.
func pageArgs(b *condBuilder, q listquery.Query) (string, []any) {
	n := len(b.args)
	args := append(b.args, q.Limit(), q.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func likePattern(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(text)
	return "%" + escaped + "%"
}
