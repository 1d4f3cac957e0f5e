package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codearena/internal/listquery"
)

// listResponse responde el contrato de listado paginado: las filas de la
// pagina pedida mas la cantidad total de paginas.
func listResponse(c *gin.Context, q listquery.Query, data any, total int) {
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"page_count": listquery.PageCount(total, q.PerPage),
		"page":       q.Page,
		"per_page":   q.PerPage,
	})
}
