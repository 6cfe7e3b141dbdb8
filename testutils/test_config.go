package testutils

import (
	"os"

	"backend_frota/config"
)

// SetupTestConfig настраивает тестовую конфигурацию
func SetupTestConfig() {
	// Устанавливаем переменные окружения для тестов
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("APP_ENV", "test")
	os.Setenv("MAINT_OPERATIONAL_HOURS_PER_DAY", "20")

	// Загружаем конфигурацию
	config.LoadConfig()
}
