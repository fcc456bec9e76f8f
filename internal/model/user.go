package model

import (
	"time"

	"github.com/google/uuid"
)

// Application modules. A user group grants access to a subset of these;
// every protected route group is gated on one module.
const (
	ModuleDashboard = "dashboard"
	ModuleOrders    = "orders"
	ModuleInvoices  = "invoices"
	ModuleClients   = "clients"
	ModuleEmployees = "employees"
	ModuleProducts  = "products"
	ModuleMaterials = "materials"
	ModuleAdmin     = "admin"
)

// AllModules returns every known module name.
func AllModules() []string {
	return []string{
		ModuleDashboard, ModuleOrders, ModuleInvoices, ModuleClients,
		ModuleEmployees, ModuleProducts, ModuleMaterials, ModuleAdmin,
	}
}

// UserGroup grants a named set of module permissions.
type UserGroup struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	Modules     []string `gorm:"serializer:json;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasModule reports whether the group grants access to a module.
func (g *UserGroup) HasModule(module string) bool {
	for _, m := range g.Modules {
		if m == module {
			return true
		}
	}
	return false
}

// User is a login account. Access rights come entirely from the group.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	FirstName    string    `gorm:"not null"`
	LastName     string    `gorm:"not null"`
	Email        *string
	PasswordHash string    `gorm:"not null"`
	GroupID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Group *UserGroup `gorm:"foreignKey:GroupID"`
}
