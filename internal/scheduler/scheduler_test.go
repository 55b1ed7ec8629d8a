// server/internal/scheduler/scheduler_test.go
package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLogAnillo(t *testing.T) {
	s := &Service{config: DefaultConfig()}

	t.Run("el más nuevo queda primero", func(t *testing.T) {
		s.addLog("primero", "info", nil)
		s.addLog("segundo", "success", nil)

		require.Len(t, s.logs, 2)
		assert.Equal(t, "segundo", s.logs[0].Message)
		assert.Equal(t, "primero", s.logs[1].Message)
	})

	t.Run("el anillo nunca supera las cien entradas", func(t *testing.T) {
		for i := 0; i < maxLogs+50; i++ {
			s.addLog(fmt.Sprintf("entrada %d", i), "info", nil)
		}

		assert.Len(t, s.logs, maxLogs)
		assert.Equal(t, fmt.Sprintf("entrada %d", maxLogs+49), s.logs[0].Message)
	})
}

func TestStatus(t *testing.T) {
	s := &Service{config: DefaultConfig()}
	for i := 0; i < 30; i++ {
		s.addLog(fmt.Sprintf("entrada %d", i), "info", nil)
	}

	status := s.Status()

	assert.False(t, status.IsRunning)
	assert.Nil(t, status.NextExecution)
	assert.Equal(t, "*/30 * * * *", status.Config.Interval)
	// El status expone solo los últimos veinte logs.
	require.Len(t, status.Logs, 20)
	assert.Equal(t, "entrada 29", status.Logs[0].Message)
}

func TestLogs(t *testing.T) {
	s := &Service{config: DefaultConfig()}
	for i := 0; i < 10; i++ {
		s.addLog(fmt.Sprintf("entrada %d", i), "info", nil)
	}

	assert.Len(t, s.Logs(5), 5)
	assert.Len(t, s.Logs(0), 10)
	assert.Len(t, s.Logs(50), 10)
	assert.Equal(t, "entrada 9", s.Logs(1)[0].Message)
}

func TestUpdateConfigValidaCron(t *testing.T) {
	s := &Service{config: DefaultConfig()}

	err := s.UpdateConfig(ConfigUpdate{Interval: "esto no es cron"})

	assert.Error(t, err)
	assert.Equal(t, "*/30 * * * *", s.config.Interval)
}

func TestUpdateConfigParcial(t *testing.T) {
	t.Run("cambiar solo el intervalo no deshabilita el scheduler", func(t *testing.T) {
		s := &Service{config: DefaultConfig()}

		require.NoError(t, s.UpdateConfig(ConfigUpdate{Interval: "0 * * * *"}))

		assert.Equal(t, "0 * * * *", s.config.Interval)
		assert.True(t, s.config.Enabled)
	})

	t.Run("enabled explícito sí se aplica", func(t *testing.T) {
		s := &Service{config: DefaultConfig()}
		deshabilitado := false

		require.NoError(t, s.UpdateConfig(ConfigUpdate{Enabled: &deshabilitado}))

		assert.False(t, s.config.Enabled)
	})

	t.Run("los campos vacíos conservan el valor actual", func(t *testing.T) {
		s := &Service{config: DefaultConfig()}
		s.config.ExcelPath = "/datos/planilla.xlsx"
		s.config.ExcelSheet = "Presupuestos"

		require.NoError(t, s.UpdateConfig(ConfigUpdate{Interval: "*/15 * * * *"}))

		assert.Equal(t, "/datos/planilla.xlsx", s.config.ExcelPath)
		assert.Equal(t, "Presupuestos", s.config.ExcelSheet)
	})
}
