package infra

// RedisNamespace — базовый префикс для изоляции данных проекта в Redis
const RedisNamespace = "ams"

// Каналы Pub/Sub (события)
const (
	// RedisChanAdminState — канал трансляции смены состояния аккаунтов
	// (disable/delete). Токены stateless и живут до exp, поэтому шлюзы,
	// которым нужно реагировать раньше, слушают этот канал.
	// Формат сообщения: "admin_id:enabled|disabled|deleted".
	RedisChanAdminState = RedisNamespace + ":admins:state-signal"
)
