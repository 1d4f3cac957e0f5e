// Package listquery traduce entre el query string de una URL y el estado de
// una tabla paginada en el servidor (pagina, tamano, orden y filtros por
// columna). El parseo y la serializacion son puros; los endpoints de listado
// los usan para que cada vista sea compartible via URL.
package listquery

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Claves reservadas del query string; el resto se interpreta como filtros.
const (
	keyPage    = "page"
	keyPerPage = "per_page"
	keySort    = "sort"
)

// Sort indica columna y direccion. Desc=false equivale a ascendente.
type Sort struct {
	Column string
	Desc   bool
}

// Filter es un filtro por columna. Una columna "searchable" lleva texto libre
// en Text; una columna "filterable" lleva un set de valores en Values.
// Nunca se llenan ambos para el mismo filtro.
type Filter struct {
	Column string
	Text   string
	Values []string
}

// Query es el estado completo de una tabla paginada en el servidor.
type Query struct {
	Page    int
	PerPage int
	Sort    *Sort
	Filters []Filter
}

// Config particiona las columnas de una tabla: cada columna es searchable,
// filterable o ninguna de las dos, nunca ambas.
type Config struct {
	Searchable  []string
	Filterable  []string
	DefaultSort *Sort
	MaxPerPage  int
}

// Parse construye un Query desde los parametros de una URL. Valores numericos
// malformados caen en silencio a los defaults; claves desconocidas se ignoran.
func (c Config) Parse(values url.Values) Query {
	q := Query{
		Page:    parsePositiveInt(values.Get(keyPage), DefaultPage),
		PerPage: parsePositiveInt(values.Get(keyPerPage), DefaultPerPage),
	}
	if c.MaxPerPage > 0 && q.PerPage > c.MaxPerPage {
		q.PerPage = c.MaxPerPage
	}

	if s, ok := parseSort(values.Get(keySort)); ok {
		q.Sort = &s
	} else if c.DefaultSort != nil {
		s := *c.DefaultSort
		q.Sort = &s
	}

	// Orden deterministico: primero columnas searchable, luego filterable.
	for _, col := range c.Searchable {
		if text := strings.TrimSpace(values.Get(col)); text != "" {
			q.Filters = append(q.Filters, Filter{Column: col, Text: text})
		}
	}
	for _, col := range c.Filterable {
		if raw := strings.TrimSpace(values.Get(col)); raw != "" {
			if set := splitSet(raw); len(set) > 0 {
				q.Filters = append(q.Filters, Filter{Column: col, Values: set})
			}
		}
	}
	return q
}

// ParseString es Parse sobre un query string crudo ("page=2&sort=name.desc").
func (c Config) ParseString(rawQuery string) Query {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	return c.Parse(values)
}

// Encode serializa el estado de vuelta a parametros de URL. Los valores en
// default y los filtros vacios se omiten: limpiar un filtro elimina su clave
// en lugar de dejarla con valor vacio.
func (q Query) Encode() url.Values {
	values := url.Values{}
	if q.Page > 0 && q.Page != DefaultPage {
		values.Set(keyPage, strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 && q.PerPage != DefaultPerPage {
		values.Set(keyPerPage, strconv.Itoa(q.PerPage))
	}
	if q.Sort != nil && q.Sort.Column != "" {
		values.Set(keySort, q.Sort.Column+"."+direction(q.Sort.Desc))
	}
	for _, f := range q.Filters {
		switch {
		case f.Text != "":
			values.Set(f.Column, f.Text)
		case len(f.Values) > 0:
			values.Set(f.Column, strings.Join(f.Values, ","))
		}
	}
	return values
}

// EncodeString devuelve el query string equivalente al estado.
func (q Query) EncodeString() string {
	return q.Encode().Encode()
}

// WithPage cambia solo la pagina actual.
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = DefaultPage
	}
	q.Page = page
	return q
}

// WithPerPage cambia el tamano de pagina y vuelve a la primera pagina, para
// no quedar en una pagina fuera de rango con el nuevo tamano.
func (q Query) WithPerPage(perPage int) Query {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	q.PerPage = perPage
	q.Page = DefaultPage
	return q
}

// WithSort fija columna y direccion de orden.
func (q Query) WithSort(column string, desc bool) Query {
	q.Sort = &Sort{Column: column, Desc: desc}
	return q
}

// ToggleSort alterna la direccion sobre la misma columna y arranca en
// ascendente al cambiar de columna. El toggle es de dos estados (asc/desc);
// no existe un tercer click que des-ordene.
func (q Query) ToggleSort(column string) Query {
	if q.Sort != nil && q.Sort.Column == column {
		return q.WithSort(column, !q.Sort.Desc)
	}
	return q.WithSort(column, false)
}

// WithSearch fija el filtro de texto libre de una columna searchable. Texto
// vacio elimina el filtro. Siempre vuelve a la primera pagina.
func (q Query) WithSearch(column, text string) Query {
	text = strings.TrimSpace(text)
	q.Filters = removeFilter(q.Filters, column)
	if text != "" {
		q.Filters = append(q.Filters, Filter{Column: column, Text: text})
	}
	q.Page = DefaultPage
	return q
}

// WithFacet fija el set de valores de una columna filterable. Un set vacio
// elimina el filtro. Siempre vuelve a la primera pagina.
func (q Query) WithFacet(column string, values []string) Query {
	q.Filters = removeFilter(q.Filters, column)
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) > 0 {
		q.Filters = append(q.Filters, Filter{Column: column, Values: cleaned})
	}
	q.Page = DefaultPage
	return q
}

// FilterText devuelve el texto de busqueda de una columna, o "" si no hay.
func (q Query) FilterText(column string) string {
	for _, f := range q.Filters {
		if f.Column == column {
			return f.Text
		}
	}
	return ""
}

// FilterValues devuelve el set de valores de una columna, o nil si no hay.
func (q Query) FilterValues(column string) []string {
	for _, f := range q.Filters {
		if f.Column == column {
			return f.Values
		}
	}
	return nil
}

// Offset es el desplazamiento SQL equivalente a la pagina actual.
func (q Query) Offset() int {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * q.Limit()
}

// Limit es el tamano de pagina efectivo.
func (q Query) Limit() int {
	if q.PerPage < 1 {
		return DefaultPerPage
	}
	return q.PerPage
}

// PageCount calcula ceil(total/per_page) para la respuesta de listado.
func PageCount(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return (total + perPage - 1) / perPage
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseSort(raw string) (Sort, bool) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, ".")
	if idx <= 0 || idx == len(raw)-1 {
		return Sort{}, false
	}
	column := raw[:idx]
	switch raw[idx+1:] {
	case "asc":
		return Sort{Column: column}, true
	case "desc":
		return Sort{Column: column, Desc: true}, true
	}
	return Sort{}, false
}

func splitSet(raw string) []string {
	parts := strings.Split(raw, ",")
	set := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			set = append(set, p)
		}
	}
	return set
}

func removeFilter(filters []Filter, column string) []Filter {
	kept := filters[:0:0]
	for _, f := range filters {
		if f.Column != column {
			kept = append(kept, f)
		}
	}
	return kept
}

func direction(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}
