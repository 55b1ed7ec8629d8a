// server/internal/stats/mensuales.go
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"presupuestos-api-server/internal/models"
)

// El tablero mensual arranca en agosto 2025 y, cuando el rango supera los seis
// meses, se recorta a los últimos seis.
var epocaMensual = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

const ventanaMeses = 6

// DatosMes son los contadores de un taller en un mes.
type DatosMes struct {
	Realizados int     `json:"realizados"`
	Aceptados  int     `json:"aceptados"`
	Conversion int     `json:"conversion"`
	Monto      float64 `json:"monto"`
}

// MensualTaller es la fila mensual de un taller: un DatosMes por clave "YYYY-MM".
type MensualTaller struct {
	Taller string              `json:"taller"`
	Meses  map[string]DatosMes `json:"meses"`
}

// ResultadoMensual es el tablero completo: filas por taller, la fila TOTAL por
// mes y la lista ordenada de claves de mes para el frontend.
type ResultadoMensual struct {
	Talleres         []MensualTaller     `json:"talleres"`
	TotalesPorMes    map[string]DatosMes `json:"totalesPorMes"`
	MesesDisponibles []string            `json:"mesesDisponibles"`
}

// VentanaMensual devuelve las claves "YYYY-MM" desde la época hasta el mes de
// "ahora", recortadas a los últimos seis meses cuando el rango los supera.
func VentanaMensual(ahora time.Time) []string {
	mesActual := time.Date(ahora.Year(), ahora.Month(), 1, 0, 0, 0, 0, time.UTC)
	if mesActual.Before(epocaMensual) {
		mesActual = epocaMensual
	}

	diffMeses := (mesActual.Year()-epocaMensual.Year())*12 + int(mesActual.Month()) - int(epocaMensual.Month())
	desde := epocaMensual
	if diffMeses > ventanaMeses {
		desde = mesActual.AddDate(0, -(ventanaMeses - 1), 0)
	}

	var claves []string
	for mes := desde; !mes.After(mesActual); mes = mes.AddDate(0, 1, 0) {
		claves = append(claves, fmt.Sprintf("%04d-%02d", mes.Year(), int(mes.Month())))
	}
	return claves
}

func claveMes(fecha time.Time) string {
	return fmt.Sprintf("%04d-%02d", fecha.Year(), int(fecha.Month()))
}

// Mensuales arma el tablero mensual por taller: realizados (estado distinto de
// Abierto), aceptados, conversión redondeada y monto aceptado, por mes de la
// ventana, con la fila TOTAL sumada por mes.
func Mensuales(d Datos, ahora time.Time) ResultadoMensual {
	claves := VentanaMensual(ahora)
	enVentana := make(map[string]bool, len(claves))
	for _, clave := range claves {
		enVentana[clave] = true
	}

	porNombre := make(map[string]map[string]*DatosMes)
	for _, nombre := range d.nombresConocidos() {
		meses := make(map[string]*DatosMes, len(claves))
		for _, clave := range claves {
			meses[clave] = &DatosMes{}
		}
		porNombre[nombre] = meses
	}
	totales := make(map[string]*DatosMes, len(claves))
	for _, clave := range claves {
		totales[clave] = &DatosMes{}
	}

	for i := range d.Presupuestos {
		p := &d.Presupuestos[i]
		if p.Estado == models.EstadoAbierto {
			continue
		}
		clave := claveMes(p.FechaCreacion())
		if !enVentana[clave] {
			continue
		}
		meses, ok := porNombre[d.NombreTaller(p.Taller)]
		if !ok {
			continue
		}
		datos := meses[clave]
		datos.Realizados++
		totales[clave].Realizados++
		if p.Estado == models.EstadoAceptado {
			datos.Aceptados++
			datos.Monto += p.Importe
			totales[clave].Aceptados++
			totales[clave].Monto += p.Importe
		}
	}

	filas := make([]MensualTaller, 0, len(porNombre))
	for nombre, meses := range porNombre {
		fila := MensualTaller{Taller: nombre, Meses: make(map[string]DatosMes, len(meses))}
		for clave, datos := range meses {
			datos.Conversion = porcentaje(datos.Aceptados, datos.Realizados)
			fila.Meses[clave] = *datos
		}
		filas = append(filas, fila)
	}
	sort.Slice(filas, func(i, j int) bool {
		return strings.ToLower(filas[i].Taller) < strings.ToLower(filas[j].Taller)
	})

	totalesPorMes := make(map[string]DatosMes, len(totales))
	for clave, datos := range totales {
		datos.Conversion = porcentaje(datos.Aceptados, datos.Realizados)
		totalesPorMes[clave] = *datos
	}

	return ResultadoMensual{
		Talleres:         filas,
		TotalesPorMes:    totalesPorMes,
		MesesDisponibles: claves,
	}
}
