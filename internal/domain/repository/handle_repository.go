package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"tle_userdb/internal/common"
	"tle_userdb/internal/domain/model"
)

// HandleRepository binds Discord users to judge handles, one per guild.
type HandleRepository interface {
	SetHandle(ctx context.Context, userID, guildID int64, handle string) (int64, error)
	SetInactive(ctx context.Context, members []model.GuildUser) (int64, error)
	GetHandle(ctx context.Context, userID, guildID int64) (string, bool, error)
	GetUserID(ctx context.Context, handle string, guildID int64) (int64, bool, error)
	RemoveHandle(ctx context.Context, userID, guildID int64) (int64, error)
	HandlesForGuild(ctx context.Context, guildID int64) ([]model.UserHandle, error)
	ProfilesForGuild(ctx context.Context, guildID int64) ([]model.GuildProfile, error)
	ResetStatus(ctx context.Context, guildID int64) (int64, error)
	UpdateStatus(ctx context.Context, guildID int64, activeUserIDs []int64) (int64, error)
}

var userHandleColumns = []string{"user_id", "guild_id", "handle", "active"}

type sqlHandleRepository struct {
	s Session
}

func NewSQLHandleRepository(s Session) HandleRepository {
	return &sqlHandleRepository{s: s}
}

// SetHandle binds handle to the user in the guild, replacing any earlier binding
// of that user. A handle owned by another user in the same guild is refused with
// ErrUniqueConstraint and nothing is written.
func (r *sqlHandleRepository) SetHandle(ctx context.Context, userID, guildID int64, handle string) (int64, error) {
	var n int64
	err := withTx(ctx, r.s, func(tx *sqlx.Tx) error {
		var owner int64
		found, err := lookupOne(ctx, tx, &owner, `SELECT user_id FROM user_handle WHERE guild_id = ? AND handle = ?`, guildID, handle)
		if err != nil {
			return err
		}
		if found && owner != userID {
			return fmt.Errorf("handle %q is bound to another user: %w", handle, common.ErrUniqueConstraint)
		}
		n, err = upsert(ctx, tx, "user_handle", []string{"user_id", "guild_id"}, userHandleColumns, userID, guildID, handle, 1)
		return err
	})
	if err != nil {
		return 0, wrap("sqlHandleRepository.SetHandle", err)
	}
	return n, nil
}

func (r *sqlHandleRepository) SetInactive(ctx context.Context, members []model.GuildUser) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	var total int64
	err := withTx(ctx, r.s, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`UPDATE user_handle SET active = 0 WHERE guild_id = ? AND user_id = ?`))
		if err != nil {
			return classify(err)
		}
		defer stmt.Close()
		for _, m := range members {
			res, err := stmt.ExecContext(ctx, m.GuildID, m.UserID)
			if err != nil {
				return classify(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, wrap("sqlHandleRepository.SetInactive", err)
	}
	return total, nil
}

func (r *sqlHandleRepository) GetHandle(ctx context.Context, userID, guildID int64) (string, bool, error) {
	var handle string
	found, err := lookupOne(ctx, r.s.DB(), &handle, `SELECT handle FROM user_handle WHERE user_id = ? AND guild_id = ?`, userID, guildID)
	if err != nil {
		return "", false, wrap("sqlHandleRepository.GetHandle", err)
	}
	return handle, found, nil
}

// GetUserID resolves an active binding, ignoring the case of handle.
func (r *sqlHandleRepository) GetUserID(ctx context.Context, handle string, guildID int64) (int64, bool, error) {
	var userID int64
	found, err := lookupOne(ctx, r.s.DB(), &userID,
		`SELECT user_id FROM user_handle WHERE UPPER(handle) = UPPER(?) AND guild_id = ? AND active = 1`, handle, guildID)
	if err != nil {
		return 0, false, wrap("sqlHandleRepository.GetUserID", err)
	}
	return userID, found, nil
}

func (r *sqlHandleRepository) RemoveHandle(ctx context.Context, userID, guildID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `DELETE FROM user_handle WHERE user_id = ? AND guild_id = ?`, userID, guildID)
	if err != nil {
		return 0, wrap("sqlHandleRepository.RemoveHandle", err)
	}
	return n, nil
}

func (r *sqlHandleRepository) HandlesForGuild(ctx context.Context, guildID int64) ([]model.UserHandle, error) {
	var handles []model.UserHandle
	err := lookupAll(ctx, r.s.DB(), &handles,
		`SELECT user_id, guild_id, handle, active FROM user_handle WHERE guild_id = ? AND active = 1 ORDER BY user_id`, guildID)
	if err != nil {
		return nil, wrap("sqlHandleRepository.HandlesForGuild", err)
	}
	return handles, nil
}

type guildProfileRow struct {
	UserID int64  `db:"user_id"`
	Handle string `db:"bound_handle"`
	profileRow
}

func (r *sqlHandleRepository) ProfilesForGuild(ctx context.Context, guildID int64) ([]model.GuildProfile, error) {
	var rows []guildProfileRow
	err := lookupAll(ctx, r.s.DB(), &rows, `
		SELECT u.user_id, u.handle AS bound_handle, `+prefixed("c", profileColumns)+`
		FROM user_handle u
		LEFT JOIN cf_user_cache c ON c.handle = u.handle
		WHERE u.guild_id = ? AND u.active = 1
		ORDER BY u.user_id`, guildID)
	if err != nil {
		return nil, wrap("sqlHandleRepository.ProfilesForGuild", err)
	}
	profiles := make([]model.GuildProfile, 0, len(rows))
	for _, row := range rows {
		gp := model.GuildProfile{UserID: row.UserID, Handle: row.Handle}
		if row.profileRow.Handle.Valid {
			gp.Profile = row.profileRow.toModel()
		}
		profiles = append(profiles, gp)
	}
	return profiles, nil
}

func (r *sqlHandleRepository) ResetStatus(ctx context.Context, guildID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `UPDATE user_handle SET active = 0 WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, wrap("sqlHandleRepository.ResetStatus", err)
	}
	return n, nil
}

// UpdateStatus marks the listed users active in the guild. Users not listed
// keep their current flag; pair it with ResetStatus for a full resync.
func (r *sqlHandleRepository) UpdateStatus(ctx context.Context, guildID int64, activeUserIDs []int64) (int64, error) {
	if len(activeUserIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE user_handle SET active = 1 WHERE user_id IN (?) AND guild_id = ?`, activeUserIDs, guildID)
	if err != nil {
		return 0, fmt.Errorf("sqlHandleRepository.UpdateStatus: %w", err)
	}
	n, err := exec(ctx, r.s.DB(), query, args...)
	if err != nil {
		return 0, wrap("sqlHandleRepository.UpdateStatus", err)
	}
	return n, nil
}
