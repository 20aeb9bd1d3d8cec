package models

const (
	// DefaultPageSize размер страницы списков по умолчанию
	DefaultPageSize = 10

	// AvailabilityCacheTTL время жизни кэша проекции доступности в секундах
	AvailabilityCacheTTL = 60

	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 128

	// RateLimitRPS и RateLimitBurst значения ограничения частоты по умолчанию
	RateLimitRPS   = 10
	RateLimitBurst = 5
)
