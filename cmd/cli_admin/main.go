package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"codearena/internal/config"
	"codearena/internal/db"
	"codearena/internal/listquery"
	"codearena/internal/repository"
)

// Navegador interactivo de los listados de administracion. Cada vista es un
// estado de tabla paginada: se pagina, ordena y filtra con comandos, y el
// query string equivalente se muestra en cada refresco para poder pegarlo en
// el endpoint HTTP.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	projectRepo := repository.NewPgProjectRepository(pool)

	for {
		fmt.Println("===== CodeArena Admin =====")
		fmt.Println("[1] Usuarios")
		fmt.Println("[2] Proyectos")
		fmt.Println("[3] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "1":
			browseTable(reader, listquery.Config{
				Searchable:  []string{"name", "email"},
				Filterable:  []string{"role", "school_id"},
				DefaultSort: &listquery.Sort{Column: "created_at", Desc: true},
				MaxPerPage:  100,
			}, func(q listquery.Query) ([]string, int, error) {
				users, total, err := userRepo.List(ctx, q)
				if err != nil {
					return nil, 0, err
				}
				lines := make([]string, 0, len(users))
				for _, u := range users {
					lines = append(lines, fmt.Sprintf("%-36s %-30s %s", u.ID, u.Email, u.Role))
				}
				return lines, total, nil
			})
		case "2":
			browseTable(reader, listquery.Config{
				Searchable:  []string{"title", "author"},
				Filterable:  []string{"status", "category_id", "competition_id", "school_id"},
				DefaultSort: &listquery.Sort{Column: "created_at", Desc: true},
				MaxPerPage:  100,
			}, func(q listquery.Query) ([]string, int, error) {
				projects, total, err := projectRepo.List(ctx, q)
				if err != nil {
					return nil, 0, err
				}
				lines := make([]string, 0, len(projects))
				for _, p := range projects {
					lines = append(lines, fmt.Sprintf("%-36s %-9s %s", p.ID, p.Status, p.Title))
				}
				return lines, total, nil
			})
		case "3":
			return
		default:
			fmt.Println("Seleccion invalida.")
		}
	}
}

// browseTable corre el loop de navegacion sobre una tabla. El Controller
// aplica paginado, orden y facetas de inmediato y las busquedas de texto con
// debounce; Flush fuerza la busqueda pendiente antes de refrescar.
func browseTable(reader *bufio.Reader, cfg listquery.Config, fetch func(listquery.Query) ([]string, int, error)) {
	render := func(q listquery.Query) {
		lines, total, err := fetch(q)
		if err != nil {
			fmt.Printf("Error consultando: %v\n", err)
			return
		}
		fmt.Printf("\n?%s\n", q.EncodeString())
		for _, line := range lines {
			fmt.Println(line)
		}
		fmt.Printf("-- pagina %d de %d (%d filas)\n", q.Page, listquery.PageCount(total, q.PerPage), total)
	}

	ctrl := listquery.NewController(cfg, cfg.ParseString(""), render)
	defer ctrl.Close()

	render(ctrl.State())
	for {
		fmt.Print("\n[n]ext [p]rev [s]ize N [o]rder COL [b]uscar COL TEXTO [f]iltro COL v1,v2 [q] volver\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "n":
			ctrl.SetPage(ctrl.State().Page + 1)
		case "p":
			if page := ctrl.State().Page; page > 1 {
				ctrl.SetPage(page - 1)
			}
		case "s":
			if len(fields) < 2 {
				fmt.Println("Falta el tamano de pagina.")
				continue
			}
			size, err := strconv.Atoi(fields[1])
			if err != nil || size < 1 {
				fmt.Println("Tamano invalido.")
				continue
			}
			ctrl.SetPerPage(size)
		case "o":
			if len(fields) < 2 {
				fmt.Println("Falta la columna.")
				continue
			}
			ctrl.ToggleSort(fields[1])
		case "b":
			if len(fields) < 2 {
				fmt.Println("Uso: b COL TEXTO")
				continue
			}
			text := strings.Join(fields[2:], " ")
			ctrl.SetSearch(fields[1], text)
			// En un CLI no hay tipeo continuo: se fuerza el flush.
			ctrl.Flush()
		case "f":
			if len(fields) < 2 {
				fmt.Println("Uso: f COL v1,v2")
				continue
			}
			var values []string
			if len(fields) > 2 {
				for _, v := range strings.Split(fields[2], ",") {
					if v = strings.TrimSpace(v); v != "" {
						values = append(values, v)
					}
				}
			}
			ctrl.SetFacet(fields[1], values)
		case "q":
			return
		default:
			fmt.Println("Comando desconocido.")
		}
	}
}
