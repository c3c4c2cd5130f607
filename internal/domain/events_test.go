package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAudienceCovers(t *testing.T) {
	studentID := uuid.New()
	companyID := uuid.New()

	student := Identity{UserID: uuid.New(), Role: RoleStudent, StudentID: studentID}
	otherStudent := Identity{UserID: uuid.New(), Role: RoleStudent, StudentID: uuid.New()}
	company := Identity{UserID: uuid.New(), Role: RoleCompany, CompanyID: companyID}
	otherCompany := Identity{UserID: uuid.New(), Role: RoleCompany, CompanyID: uuid.New()}
	admin := Identity{UserID: uuid.New(), Role: RoleAdmin}

	t.Run("admin is always covered", func(t *testing.T) {
		assert.True(t, Audience{}.Covers(admin))
		assert.True(t, Audience{Roles: []Role{RoleStudent}, StudentID: studentID}.Covers(admin))
	})

	t.Run("scoped to one student", func(t *testing.T) {
		a := Audience{Roles: []Role{RoleStudent}, StudentID: studentID}
		assert.True(t, a.Covers(student))
		assert.False(t, a.Covers(otherStudent))
		assert.False(t, a.Covers(company))
	})

	t.Run("scoped to one company", func(t *testing.T) {
		a := Audience{Roles: []Role{RoleCompany}, CompanyID: companyID}
		assert.True(t, a.Covers(company))
		assert.False(t, a.Covers(otherCompany))
		assert.False(t, a.Covers(student))
	})

	t.Run("zero id covers the whole role", func(t *testing.T) {
		a := Audience{Roles: []Role{RoleStudent}}
		assert.True(t, a.Covers(student))
		assert.True(t, a.Covers(otherStudent))
		assert.False(t, a.Covers(company))
	})

	t.Run("mixed audience", func(t *testing.T) {
		a := Audience{Roles: []Role{RoleStudent, RoleCompany}, StudentID: studentID, CompanyID: companyID}
		assert.True(t, a.Covers(student))
		assert.True(t, a.Covers(company))
		assert.False(t, a.Covers(otherStudent))
		assert.False(t, a.Covers(otherCompany))
	})

	t.Run("empty audience covers only admins", func(t *testing.T) {
		a := Audience{}
		assert.False(t, a.Covers(student))
		assert.False(t, a.Covers(company))
		assert.True(t, a.Covers(admin))
	})
}
