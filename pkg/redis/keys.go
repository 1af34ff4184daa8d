package redis

import "strings"

// Key naming conventions for Redis keys.
// All keys follow the pattern: {namespace}:{entity}:{id}
//
// Example: "ls:catalog:albums" for the albums collection document.

const (
	// KeyNamespace prefixes every key.
	KeyNamespace = "ls"
)

// KeyBuilder helps build Redis keys following naming conventions.
type KeyBuilder struct {
	parts []string
}

// NewKeyBuilder creates a new key builder rooted at namespace. An empty
// namespace uses KeyNamespace.
func NewKeyBuilder(namespace string) *KeyBuilder {
	if namespace == "" {
		namespace = KeyNamespace
	}
	return &KeyBuilder{parts: []string{namespace}}
}

// Entity adds an entity type to the key.
func (kb *KeyBuilder) Entity(entity string) *KeyBuilder {
	kb.parts = append(kb.parts, entity)
	return kb
}

// ID adds an ID to the key.
func (kb *KeyBuilder) ID(id string) *KeyBuilder {
	kb.parts = append(kb.parts, id)
	return kb
}

// Build constructs the final key string.
func (kb *KeyBuilder) Build() string {
	return strings.Join(kb.parts, ":")
}

// CatalogKey returns the key holding one catalog collection document.
// Example: ls:catalog:users
func CatalogKey(namespace, collection string) string {
	return NewKeyBuilder(namespace).Entity("catalog").ID(collection).Build()
}
