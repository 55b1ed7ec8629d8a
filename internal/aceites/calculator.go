// server/internal/aceites/calculator.go
package aceites

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"presupuestos-api-server/internal/models"
)

// Catalogo es el catálogo de aceites materializado en memoria: SKU normalizado
// a litros por tambor. Para listados y estadísticas se carga una sola vez por
// request en lugar de consultar la base pieza por pieza.
type Catalogo map[string]float64

// CargarCatalogo lee todos los aceites de la colección. Una entrada con litros
// inválidos (<= 0) se descarta: la pieza se trata como no-aceite en vez de
// dividir por cero.
func CargarCatalogo(ctx context.Context, db *mongo.Database) (Catalogo, error) {
	cursor, err := db.Collection("aceites").Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var aceites []models.Aceite
	if err := cursor.All(ctx, &aceites); err != nil {
		return nil, err
	}

	catalogo := make(Catalogo, len(aceites))
	for _, a := range aceites {
		if a.LitrosPorTambor > 0 {
			catalogo[models.NormalizarSku(a.Sku)] = a.LitrosPorTambor
		}
	}
	return catalogo, nil
}

// Calculo es el resultado de reconstruir los valores por unidad de una pieza.
type Calculo struct {
	Costo    float64
	Pvp      float64
	Importe  float64
	EsAceite bool
}

// CalcularPieza determina el costo y pvp reales de una pieza. Si el SKU está en
// el catálogo, costo y pvp vienen a nivel tambor y se reconstruyen por litro:
// (valor / litrosPorTambor) * cantidad. El importe nunca se recalcula: es el
// monto pactado tal como está almacenado.
func (c Catalogo) CalcularPieza(pieza models.Pieza) Calculo {
	litros, ok := c[models.NormalizarSku(pieza.Pieza)]
	if !ok || litros <= 0 {
		return Calculo{Costo: pieza.Costo, Pvp: pieza.Pvp, Importe: pieza.Importe}
	}

	cantidad := pieza.Cantidad
	if cantidad == 0 {
		cantidad = 1
	}

	return Calculo{
		Costo:    pieza.Costo / litros * cantidad,
		Pvp:      pieza.Pvp / litros * cantidad,
		Importe:  pieza.Importe,
		EsAceite: true,
	}
}

// Totales son los acumulados de un presupuesto con el cálculo de aceites aplicado.
type Totales struct {
	Costo   float64
	Pvp     float64
	Importe float64
}

// TotalesPresupuesto suma piezas aplicando CalcularPieza a cada una. El importe
// es siempre la suma directa de los importes almacenados.
func (c Catalogo) TotalesPresupuesto(p *models.Presupuesto) Totales {
	var t Totales
	for _, pieza := range p.Piezas {
		calculo := c.CalcularPieza(pieza)
		t.Costo += calculo.Costo
		t.Pvp += calculo.Pvp
		t.Importe += pieza.Importe
	}
	return t
}

// Margen calcula el margen porcentual redondeado; 0 cuando el importe es 0.
func Margen(importe, costo float64) int {
	if importe <= 0 {
		return 0
	}
	return int(math.Round((importe - costo) / importe * 100))
}

// Enriquecer asigna a un presupuesto sus totales y campos calculados por pieza.
// Es la misma rutina para el detalle, el listado y las estadísticas.
func (c Catalogo) Enriquecer(p *models.Presupuesto) {
	tieneAceites := false
	for i := range p.Piezas {
		calculo := c.CalcularPieza(p.Piezas[i])
		if calculo.EsAceite {
			tieneAceites = true
			costo, pvp := calculo.Costo, calculo.Pvp
			p.Piezas[i].CostoCalculado = &costo
			p.Piezas[i].PvpCalculado = &pvp
			p.Piezas[i].EsAceite = true
		}
	}

	totales := c.TotalesPresupuesto(p)
	p.Costo = totales.Costo
	p.Pvp = totales.Pvp
	p.Importe = totales.Importe
	p.Margen = Margen(totales.Importe, totales.Costo)

	if tieneAceites {
		costo, pvp, importe := totales.Costo, totales.Pvp, totales.Importe
		p.CostoCalculado = &costo
		p.PvpCalculado = &pvp
		p.ImporteCalculado = &importe
	}
}

// EnriquecerTodos aplica Enriquecer a cada elemento del slice.
func (c Catalogo) EnriquecerTodos(presupuestos []models.Presupuesto) {
	for i := range presupuestos {
		c.Enriquecer(&presupuestos[i])
	}
}
