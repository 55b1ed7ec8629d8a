// server/internal/storage/disk_test.go
package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiskCreaElDirectorio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "adjuntos", "anidado")

	_, err := NewDisk(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGuardar(t *testing.T) {
	disco, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	nombre, tamanio, err := disco.Guardar(strings.NewReader("contenido"), "informe final.pdf")

	require.NoError(t, err)
	assert.Equal(t, int64(len("contenido")), tamanio)
	// Nombre generado: uuid + extensión original.
	assert.True(t, strings.HasSuffix(nombre, ".pdf"))
	assert.NotContains(t, nombre, "informe")

	datos, err := os.ReadFile(disco.Ruta(nombre))
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(datos))
}

func TestEliminar(t *testing.T) {
	disco, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	nombre, _, err := disco.Guardar(strings.NewReader("x"), "foto.jpg")
	require.NoError(t, err)

	require.NoError(t, disco.Eliminar(nombre))
	_, err = os.Stat(disco.Ruta(nombre))
	assert.True(t, os.IsNotExist(err))

	// Borrar dos veces no es un error.
	assert.NoError(t, disco.Eliminar(nombre))
}
