package models

// UserType константы типов профилей (персон).
const (
	UserTypeFreelancer            = "freelancer"
	UserTypeOccupationProvider    = "occupation_provider"
	UserTypeSocialMediaInfluencer = "social_media_influencer"
	UserTypeBusiness              = "business"
)

// Visibility константы видимости профиля
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// GroupScope константы охвата группы
const (
	GroupScopeLocal    = "local"
	GroupScopeRegional = "regional"
	GroupScopeGlobal   = "global"
)

// LocationType константы уровней дерева локаций
const (
	LocationTypeCountry = "country"
	LocationTypeRegion  = "region"
	LocationTypeCity    = "city"
)

// CreatorUserTypes типы профилей, которые показываются во вкладке людей.
var CreatorUserTypes = []string{
	UserTypeFreelancer,
	UserTypeOccupationProvider,
	UserTypeSocialMediaInfluencer,
}

// ValidUserTypes список валидных типов профилей
var ValidUserTypes = map[string]struct{}{
	UserTypeFreelancer:            {},
	UserTypeOccupationProvider:    {},
	UserTypeSocialMediaInfluencer: {},
	UserTypeBusiness:              {},
}

// ValidVisibilities список валидных значений видимости
var ValidVisibilities = map[string]struct{}{
	VisibilityPublic:  {},
	VisibilityPrivate: {},
}

// ValidGroupScopes список валидных охватов группы
var ValidGroupScopes = map[string]struct{}{
	GroupScopeLocal:    {},
	GroupScopeRegional: {},
	GroupScopeGlobal:   {},
}
