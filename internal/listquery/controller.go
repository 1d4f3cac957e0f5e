package listquery

import (
	"sync"
	"time"
)

// DefaultDebounce acota la frecuencia de sincronizacion mientras se tipea
// en un filtro de texto libre.
const DefaultDebounce = 500 * time.Millisecond

// Controller mantiene el estado de una tabla y lo sincroniza hacia afuera
// (tipicamente re-consultando el endpoint de listado y actualizando la URL
// mostrada). Los filtros de texto libre se aplican con debounce; paginado,
// orden y facetas se aplican de inmediato.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	state    Query
	sync     func(Query)
	debounce time.Duration
	timer    *time.Timer
	pending  map[string]string
	closed   bool
}

// NewController crea un controller con el debounce default de 500ms.
// syncFn se invoca con el estado nuevo despues de cada transicion efectiva.
func NewController(cfg Config, initial Query, syncFn func(Query)) *Controller {
	return NewControllerWithDebounce(cfg, initial, syncFn, DefaultDebounce)
}

func NewControllerWithDebounce(cfg Config, initial Query, syncFn func(Query), debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if syncFn == nil {
		syncFn = func(Query) {}
	}
	return &Controller{
		cfg:      cfg,
		state:    initial,
		sync:     syncFn,
		debounce: debounce,
		pending:  make(map[string]string),
	}
}

// State devuelve una copia del estado actual (sin filtros pendientes).
func (c *Controller) State() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetPage aplica el cambio de pagina de inmediato.
func (c *Controller) SetPage(page int) {
	c.apply(func(q Query) Query { return q.WithPage(page) })
}

// SetPerPage aplica el cambio de tamano de pagina de inmediato.
func (c *Controller) SetPerPage(perPage int) {
	c.apply(func(q Query) Query { return q.WithPerPage(perPage) })
}

// ToggleSort alterna el orden sobre una columna de inmediato.
func (c *Controller) ToggleSort(column string) {
	c.apply(func(q Query) Query { return q.ToggleSort(column) })
}

// SetFacet aplica un filtro de faceta de inmediato.
func (c *Controller) SetFacet(column string, values []string) {
	c.apply(func(q Query) Query { return q.WithFacet(column, values) })
}

// SetSearch registra texto de busqueda y lo aplica cuando vence el debounce.
// Llamadas sucesivas sobre cualquier columna reinician el timer.
func (c *Controller) SetSearch(column, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending[column] = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.flushPending)
}

// Flush aplica de inmediato cualquier busqueda pendiente sin esperar el timer.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.flushPending()
}

// Close cancela el timer pendiente; ninguna sincronizacion tardia puede
// dispararse despues de cerrar.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = make(map[string]string)
}

func (c *Controller) apply(fn func(Query) Query) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = fn(c.state)
	state := c.state
	syncFn := c.sync
	c.mu.Unlock()
	syncFn(state)
}

func (c *Controller) flushPending() {
	c.mu.Lock()
	if c.closed || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	for col, text := range c.pending {
		c.state = c.state.WithSearch(col, text)
	}
	c.pending = make(map[string]string)
	state := c.state
	syncFn := c.sync
	c.mu.Unlock()
	syncFn(state)
}
