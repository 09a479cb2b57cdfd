package services

// KeyValueStore persists JSON values under fixed keys. db.SettingRepository
// implements it for both the server database and the client-local state file.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Put(key string, value string) error
	Delete(keys ...string) error
}
