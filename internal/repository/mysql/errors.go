package mysql

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
)

// translate 把 gorm 错误映射为业务错误
func translate(err error, entity, op string) error {
	switch {
	case err == nil:
		return nil
	case apperr.KindOf(err) != apperr.KindUnknown:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", entity)
	default:
		return apperr.Persistence(err, "failed to "+op+" "+entity)
	}
}

func notFoundIfNone(res *gorm.DB, entity, op string) error {
	if res.Error != nil {
		return translate(res.Error, entity, op)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("%s not found", entity)
	}
	return nil
}
