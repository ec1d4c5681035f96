package store

import (
	"errors"

	"gorm.io/gorm"

	"oneonone/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository reads and writes the durable one-on-one records created
// by the scheduling layer.
type SessionRepository struct {
	DB *gorm.DB
}

func (r *SessionRepository) GetBySessionID(sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.DB.First(&session, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateNotes writes the live notes buffer back to the session row. GORM
// stamps updated_at on the way through.
func (r *SessionRepository) UpdateNotes(sessionID, notes string) error {
	result := r.DB.Model(&models.Session{}).Where("session_id = ?", sessionID).Update("notes", notes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
