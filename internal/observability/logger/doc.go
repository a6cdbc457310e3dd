// Package logger expone un logger Zap singleton con scoping por contexto.
//
//   - Singleton: una instancia global inicializada con Init().
//   - Context scoping: cada request lleva su propio logger con request_id,
//     método y path, inyectado por el middleware de logging.
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "auth-service"})
//	defer logger.Sync()
//
// En services/controllers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Register"))
//	log.Info("user registered", logger.UserID(u.ID))
package logger
