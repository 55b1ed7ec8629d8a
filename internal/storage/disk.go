// server/internal/storage/disk.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Disk guarda adjuntos en el filesystem local bajo un directorio base.
type Disk struct {
	Dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de adjuntos: %w", err)
	}
	return &Disk{Dir: dir}, nil
}

// Guardar escribe el contenido con un nombre único (uuid + extensión original)
// y devuelve el nombre generado y el tamaño escrito. Si la escritura falla, el
// archivo parcial se elimina.
func (d *Disk) Guardar(r io.Reader, nombreOriginal string) (string, int64, error) {
	ext := filepath.Ext(nombreOriginal)
	nombre := uuid.New().String() + ext
	ruta := filepath.Join(d.Dir, nombre)

	f, err := os.Create(ruta)
	if err != nil {
		return "", 0, fmt.Errorf("no se pudo crear el archivo: %w", err)
	}
	escrito, err := io.Copy(f, r)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(ruta)
		return "", 0, fmt.Errorf("no se pudo escribir el archivo: %w", err)
	}
	return nombre, escrito, nil
}

// Ruta devuelve la ruta completa de un archivo guardado.
func (d *Disk) Ruta(nombre string) string {
	return filepath.Join(d.Dir, nombre)
}

// Eliminar borra el archivo del disco. No es un error que ya no exista.
func (d *Disk) Eliminar(nombre string) error {
	err := os.Remove(filepath.Join(d.Dir, nombre))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
