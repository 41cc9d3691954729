package app

import (
	"strings"

	"github.com/Hollando78/airgen-sub002/internal/platform/envutil"
)

type Config struct {
	Port         string
	ServiceName  string
	Environment  string
	Version      string
	MirrorRoot   string
	AllowOrigins []string
}

func LoadConfig() Config {
	origins := []string{}
	for _, o := range strings.Split(envutil.Str("CORS_ALLOW_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Port:         envutil.Str("PORT", "8080"),
		ServiceName:  envutil.Str("SERVICE_NAME", "airgen-graph"),
		Environment:  envutil.Str("ENVIRONMENT", "development"),
		Version:      envutil.Str("SERVICE_VERSION", "dev"),
		MirrorRoot:   envutil.Str("MIRROR_ROOT", ""),
		AllowOrigins: origins,
	}
}
