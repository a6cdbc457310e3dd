package logger

import "go.uber.org/zap"

// S retorna el SugaredLogger del singleton, para logs printf-style en CLIs.
//
//	logger.S().Infof("migrated to version %d", v)
func S() *zap.SugaredLogger {
	return L().Sugar()
}
