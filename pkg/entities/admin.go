package entities

type AdminUser struct {
	UserID  int64
	IsSuper bool
	AddedBy int64
}

// SeedAddedBy marks admins created from startup configuration.
const SeedAddedBy int64 = 0
