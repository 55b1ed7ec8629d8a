// server/internal/excel/cargador.go
package excel

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"presupuestos-api-server/internal/models"
)

// Resumen es el resultado de una carga. Las referencias ya existentes se
// cuentan aparte: sus piezas y datos de cabecera se reemplazan pero su estado,
// comentarios, adjuntos y OR se preservan.
type Resumen struct {
	TotalFilas            int         `json:"totalFilas"`
	ReferenciasNuevas     int         `json:"referenciasNuevas"`
	ReferenciasExistentes int         `json:"referenciasExistentes"`
	PresupuestosNuevos    int         `json:"presupuestosNuevos"`
	Actualizados          int         `json:"presupuestosActualizados"`
	Errores               int         `json:"errores"`
	DetalleErrores        []FilaError `json:"detalleErrores"`
	ExistentesMuestra     []string    `json:"referenciasExistentesMuestra"`
}

const muestraMax = 10

// Cargador procesa planillas y persiste los presupuestos resultantes.
// Lo comparten el endpoint de carga manual y el scheduler.
type Cargador struct {
	DB *mongo.Database
}

// Cargar abre la planilla, la parsea y crea o actualiza los presupuestos.
// La carga no es transaccional: los errores por fila se acumulan en el resumen
// sin abortar el lote.
func (cg *Cargador) Cargar(ctx context.Context, ruta, hoja string) (Resumen, error) {
	archivo, err := excelize.OpenFile(ruta)
	if err != nil {
		return Resumen{}, fmt.Errorf("no se pudo abrir el archivo Excel: %w", err)
	}
	defer archivo.Close()

	if hoja == "" {
		hoja = archivo.GetSheetName(0)
	}
	filas, err := archivo.GetRows(hoja)
	if err != nil {
		return Resumen{}, fmt.Errorf("la hoja %q no existe en el archivo", hoja)
	}

	crudos, errores, totalFilas, err := Parsear(filas, time.Now())
	if err != nil {
		return Resumen{}, err
	}

	resumen := Resumen{
		TotalFilas:     totalFilas,
		Errores:        len(errores),
		DetalleErrores: errores,
	}
	if len(resumen.DetalleErrores) > muestraMax {
		resumen.DetalleErrores = resumen.DetalleErrores[:muestraMax]
	}

	coleccion := cg.DB.Collection("presupuestos")
	for _, crudo := range crudos {
		var existente models.Presupuesto
		err := coleccion.FindOne(ctx, bson.M{"referencia": crudo.Referencia}).Decode(&existente)
		switch {
		case err == mongo.ErrNoDocuments:
			if err := cg.insertar(ctx, crudo); err != nil {
				resumen.Errores++
				resumen.DetalleErrores = agregarError(resumen.DetalleErrores, FilaError{Error: fmt.Sprintf("referencia %s: %v", crudo.Referencia, err)})
				continue
			}
			resumen.ReferenciasNuevas++
			resumen.PresupuestosNuevos++
		case err != nil:
			resumen.Errores++
			resumen.DetalleErrores = agregarError(resumen.DetalleErrores, FilaError{Error: fmt.Sprintf("referencia %s: %v", crudo.Referencia, err)})
		default:
			if err := cg.actualizar(ctx, crudo, &existente); err != nil {
				resumen.Errores++
				resumen.DetalleErrores = agregarError(resumen.DetalleErrores, FilaError{Error: fmt.Sprintf("referencia %s: %v", crudo.Referencia, err)})
				continue
			}
			resumen.ReferenciasExistentes++
			resumen.Actualizados++
			if len(resumen.ExistentesMuestra) < muestraMax {
				resumen.ExistentesMuestra = append(resumen.ExistentesMuestra, crudo.Referencia)
			}
		}
	}

	return resumen, nil
}

func agregarError(errores []FilaError, e FilaError) []FilaError {
	if len(errores) >= muestraMax {
		return errores
	}
	return append(errores, e)
}

func (cg *Cargador) insertar(ctx context.Context, crudo Crudo) error {
	fecha := crudo.Fecha
	nuevo := models.Presupuesto{
		Referencia:           crudo.Referencia,
		Cta:                  crudo.Cta,
		Nombre:               crudo.Nombre,
		Taller:               crudo.Taller,
		Usuario:              crudo.Usuario,
		DescripcionSiniestro: crudo.DescripcionSiniestro,
		Estado:               models.EstadoAbierto,
		Piezas:               crudo.Piezas,
		Comentarios:          []models.Comentario{},
		Adjuntos:             []models.Adjunto{},
		FechaCarga:           fecha,
		UltimaActualizacion:  time.Now(),
		Auditoria: models.Auditoria{
			CreadoPor:     crudo.Usuario,
			FechaCreacion: &fecha,
		},
	}
	_, err := cg.DB.Collection("presupuestos").InsertOne(ctx, nuevo)
	return err
}

// actualizar reemplaza las piezas y los datos de cabecera de una referencia ya
// cargada. Estado, comentarios, adjuntos y orSiniestro quedan intactos.
func (cg *Cargador) actualizar(ctx context.Context, crudo Crudo, existente *models.Presupuesto) error {
	ahora := time.Now()
	set := bson.M{
		"cta":                         crudo.Cta,
		"nombre":                      crudo.Nombre,
		"taller":                      crudo.Taller,
		"usuario":                     crudo.Usuario,
		"descripcionSiniestro":        crudo.DescripcionSiniestro,
		"piezas":                      crudo.Piezas,
		"ultimaActualizacion":         ahora,
		"auditoria.modificadoPor":     crudo.Usuario,
		"auditoria.fechaModificacion": ahora,
	}
	if !crudo.Fecha.IsZero() {
		set["fechaCarga"] = crudo.Fecha
		set["auditoria.fechaCreacion"] = crudo.Fecha
	}
	_, err := cg.DB.Collection("presupuestos").UpdateOne(ctx,
		bson.M{"referencia": crudo.Referencia},
		bson.M{"$set": set},
	)
	return err
}
