// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

// --- Structs que reflejan la estructura del YAML ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type UploadsConfig struct {
	// Directorio de adjuntos por defecto. La configuración general persistida
	// en la base tiene prioridad sobre este valor.
	Dir string `mapstructure:"dir"`
}

type ExcelConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

// Config es la configuración del proceso. La configuración de negocio
// (diasParaPendiente, directorioAdjuntos) vive en la colección "configuracion".
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Uploads UploadsConfig `mapstructure:"uploads"`
	Excel   ExcelConfig   `mapstructure:"excel"`
}

// LoadConfig lee la configuración desde archivo y la sobreescribe con variables de entorno.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("uploads.dir", "UPLOADS_DIR")
	viper.BindEnv("excel.path", "EXCEL_PATH")
	viper.BindEnv("excel.sheet", "EXCEL_SHEET")

	viper.SetDefault("server.port", "5000")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.dbName", "presupuestos")
	viper.SetDefault("uploads.dir", "uploads/adjuntos")

	// Si el archivo no existe, Viper usa solo las variables de entorno y defaults.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
