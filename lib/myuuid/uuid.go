package myuuid

import "github.com/google/uuid"

//go:generate mockgen -source=uuid.go -package myuuid -destination uuider_mock.go UUIDer
type UUIDer interface {
	Create() string
}

type RealUUIDer struct{}

// Create returns a random (v4) uuid: 122 bits from crypto/rand
func (u RealUUIDer) Create() string {
	return uuid.New().String()
}
