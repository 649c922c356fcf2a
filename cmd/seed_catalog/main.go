// seed_catalog genera el script SQL que puebla materiales, ubicaciones y el mapa
// material-ubicación a partir del libro de catálogo.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xlsx]
// Por defecto busca catalogo.xlsx en el directorio actual.
// Hojas: "materials" (material_id, name, type, uom) y "locations" (plant_code, location_code, material_id).
// Escribe: internal/infrastructure/postgres/migrations/003_seed_catalog.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

func main() {
	xlsxPath := "catalogo.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir libro: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	matRows, err := f.GetRows(sheetMaterials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer hoja %s: %v\n", sheetMaterials, err)
		os.Exit(1)
	}
	locRows, err := f.GetRows(sheetLocations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer hoja %s: %v\n", sheetLocations, err)
		os.Exit(1)
	}

	cat, warnings := parseCatalog(matRows, locRows)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "aviso:", w)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "003_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, cat, filepath.Base(xlsxPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d materiales, %d ubicaciones, %d asignaciones\n",
		outPath, len(cat.Materials), len(cat.Locations), len(cat.Mappings))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
