package models

import (
	"errors"
	"strings"
)

// Domain вид сущностей, которые просматриваются в каталоге.
type Domain string

const (
	DomainPeople   Domain = "people"
	DomainBusiness Domain = "business"
	DomainGroup    Domain = "group"
)

// ErrUnknownDomain возвращается для неизвестной вкладки каталога.
var ErrUnknownDomain = errors.New("неизвестная вкладка каталога")

// ParseDomain принимает как подписи вкладок (users, businesses, groups),
// так и канонические имена доменов.
func ParseDomain(raw string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "users", "people":
		return DomainPeople, nil
	case "businesses", "business":
		return DomainBusiness, nil
	case "groups", "group":
		return DomainGroup, nil
	}
	return "", ErrUnknownDomain
}

// IsProfiles сообщает, хранится ли домен в таблице profiles.
func (d Domain) IsProfiles() bool {
	return d == DomainPeople || d == DomainBusiness
}

func (d Domain) String() string {
	return string(d)
}
