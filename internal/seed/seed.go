// Package seed bootstraps the first staff account so a fresh install is
// operable without manual SQL.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	applicantdomain "github.com/codecircle/recruit/internal/applicant/domain"
	"github.com/codecircle/recruit/internal/auth/password"
	"gorm.io/gorm"
)

// EnsureStaffAccount creates a verified staff account with the given
// credentials if none exists for the address. Existing accounts are
// promoted to staff but their password is left alone.
func EnsureStaffAccount(db *gorm.DB, node *snowflake.Node, email, plainPassword, name string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return errors.New("seed staff email and password are required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing applicantdomain.Applicant
		err := tx.First(&existing, "email = ?", email).Error
		if err == nil {
			if existing.Role == applicantdomain.RoleStaff {
				return nil
			}
			return tx.Model(&existing).Update("role", applicantdomain.RoleStaff).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}
		account := applicantdomain.Applicant{
			ID:              node.Generate(),
			Email:           email,
			Name:            strings.TrimSpace(name),
			PasswordHash:    hash,
			Role:            applicantdomain.RoleStaff,
			IsEmailVerified: true,
		}
		return tx.Create(&account).Error
	})
}
