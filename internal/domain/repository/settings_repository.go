package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tle_userdb/internal/domain/model"
)

// SettingsRepository holds the per-guild single-row settings tables. Each
// setter is a keyed upsert, so a guild never has more than one row.
type SettingsRepository interface {
	GetReminder(ctx context.Context, guildID int64) (*model.ReminderSettings, error)
	SetReminder(ctx context.Context, s model.ReminderSettings) (int64, error)
	ClearReminder(ctx context.Context, guildID int64) (int64, error)

	GetStarboard(ctx context.Context, guildID int64) (int64, bool, error)
	SetStarboard(ctx context.Context, guildID, channelID int64) (int64, error)
	ClearStarboard(ctx context.Context, guildID int64) (int64, error)
	AddStarboardMessage(ctx context.Context, m model.StarboardMessage) (int64, error)
	StarboardMessageExists(ctx context.Context, originalMsgID int64) (bool, error)
	RemoveStarboardMessageByOriginal(ctx context.Context, originalMsgID int64) (int64, error)
	RemoveStarboardMessageByStarboard(ctx context.Context, starboardMsgID int64) (int64, error)
	ClearStarboardMessages(ctx context.Context, guildID int64) (int64, error)

	GetRankupChannel(ctx context.Context, guildID int64) (int64, bool, error)
	SetRankupChannel(ctx context.Context, guildID, channelID int64) (int64, error)
	ClearRankupChannel(ctx context.Context, guildID int64) (int64, error)

	EnableAutoRoleUpdate(ctx context.Context, guildID int64) (int64, error)
	DisableAutoRoleUpdate(ctx context.Context, guildID int64) (int64, error)
	IsAutoRoleUpdateEnabled(ctx context.Context, guildID int64) (bool, error)

	GetRatedVCChannel(ctx context.Context, guildID int64) (int64, bool, error)
	SetRatedVCChannel(ctx context.Context, guildID, channelID int64) (int64, error)
	ClearRatedVCChannel(ctx context.Context, guildID int64) (int64, error)
}

const (
	tableReminder         = "reminder"
	tableStarboard        = "starboard"
	tableStarboardMessage = "starboard_message"
	tableRankup           = "rankup"
	tableAutoRoleUpdate   = "auto_role_update"
	tableRatedVCSettings  = "rated_vc_settings"
)

type sqlSettingsRepository struct {
	s Session
}

func NewSQLSettingsRepository(s Session) SettingsRepository {
	return &sqlSettingsRepository{s: s}
}

func (r *sqlSettingsRepository) GetReminder(ctx context.Context, guildID int64) (*model.ReminderSettings, error) {
	var row struct {
		GuildID   int64          `db:"guild_id"`
		ChannelID sql.NullInt64  `db:"channel_id"`
		RoleID    sql.NullInt64  `db:"role_id"`
		Before    sql.NullString `db:"remind_before"`
	}
	found, err := lookupOne(ctx, r.s.DB(), &row,
		`SELECT guild_id, channel_id, role_id, remind_before FROM reminder WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, wrap("sqlSettingsRepository.GetReminder", err)
	}
	if !found {
		return nil, nil
	}
	settings := &model.ReminderSettings{GuildID: row.GuildID, ChannelID: row.ChannelID.Int64, RoleID: row.RoleID.Int64}
	if row.Before.Valid && row.Before.String != "" {
		if err := json.Unmarshal([]byte(row.Before.String), &settings.Before); err != nil {
			return nil, fmt.Errorf("sqlSettingsRepository.GetReminder: decode remind_before: %w", err)
		}
	}
	return settings, nil
}

func (r *sqlSettingsRepository) SetReminder(ctx context.Context, s model.ReminderSettings) (int64, error) {
	before, err := json.Marshal(s.Before)
	if err != nil {
		return 0, fmt.Errorf("sqlSettingsRepository.SetReminder: encode remind_before: %w", err)
	}
	n, err := upsert(ctx, r.s.DB(), tableReminder, []string{"guild_id"},
		[]string{"guild_id", "channel_id", "role_id", "remind_before"}, s.GuildID, s.ChannelID, s.RoleID, string(before))
	if err != nil {
		return 0, wrap("sqlSettingsRepository.SetReminder", err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) ClearReminder(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "ClearReminder", tableReminder, guildID)
}

func (r *sqlSettingsRepository) GetStarboard(ctx context.Context, guildID int64) (int64, bool, error) {
	return r.channel(ctx, "GetStarboard", tableStarboard, guildID)
}

func (r *sqlSettingsRepository) SetStarboard(ctx context.Context, guildID, channelID int64) (int64, error) {
	return r.setChannel(ctx, "SetStarboard", tableStarboard, guildID, channelID)
}

func (r *sqlSettingsRepository) ClearStarboard(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "ClearStarboard", tableStarboard, guildID)
}

// AddStarboardMessage records a mirrored message. Mirroring the same original
// twice fails with ErrUniqueConstraint.
func (r *sqlSettingsRepository) AddStarboardMessage(ctx context.Context, m model.StarboardMessage) (int64, error) {
	n, err := exec(ctx, r.s.DB(), insertQuery(tableStarboardMessage, []string{"original_msg_id", "starboard_msg_id", "guild_id"}),
		m.OriginalMsgID, m.StarboardMsgID, m.GuildID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository.AddStarboardMessage", err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) StarboardMessageExists(ctx context.Context, originalMsgID int64) (bool, error) {
	var id int64
	found, err := lookupOne(ctx, r.s.DB(), &id,
		`SELECT original_msg_id FROM starboard_message WHERE original_msg_id = ?`, originalMsgID)
	if err != nil {
		return false, wrap("sqlSettingsRepository.StarboardMessageExists", err)
	}
	return found, nil
}

func (r *sqlSettingsRepository) RemoveStarboardMessageByOriginal(ctx context.Context, originalMsgID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `DELETE FROM starboard_message WHERE original_msg_id = ?`, originalMsgID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository.RemoveStarboardMessageByOriginal", err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) RemoveStarboardMessageByStarboard(ctx context.Context, starboardMsgID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `DELETE FROM starboard_message WHERE starboard_msg_id = ?`, starboardMsgID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository.RemoveStarboardMessageByStarboard", err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) ClearStarboardMessages(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "ClearStarboardMessages", tableStarboardMessage, guildID)
}

func (r *sqlSettingsRepository) GetRankupChannel(ctx context.Context, guildID int64) (int64, bool, error) {
	return r.channel(ctx, "GetRankupChannel", tableRankup, guildID)
}

func (r *sqlSettingsRepository) SetRankupChannel(ctx context.Context, guildID, channelID int64) (int64, error) {
	return r.setChannel(ctx, "SetRankupChannel", tableRankup, guildID, channelID)
}

func (r *sqlSettingsRepository) ClearRankupChannel(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "ClearRankupChannel", tableRankup, guildID)
}

func (r *sqlSettingsRepository) EnableAutoRoleUpdate(ctx context.Context, guildID int64) (int64, error) {
	n, err := upsert(ctx, r.s.DB(), tableAutoRoleUpdate, []string{"guild_id"}, []string{"guild_id"}, guildID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository.EnableAutoRoleUpdate", err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) DisableAutoRoleUpdate(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "DisableAutoRoleUpdate", tableAutoRoleUpdate, guildID)
}

func (r *sqlSettingsRepository) IsAutoRoleUpdateEnabled(ctx context.Context, guildID int64) (bool, error) {
	var id int64
	found, err := lookupOne(ctx, r.s.DB(), &id, `SELECT guild_id FROM auto_role_update WHERE guild_id = ?`, guildID)
	if err != nil {
		return false, wrap("sqlSettingsRepository.IsAutoRoleUpdateEnabled", err)
	}
	return found, nil
}

func (r *sqlSettingsRepository) GetRatedVCChannel(ctx context.Context, guildID int64) (int64, bool, error) {
	return r.channel(ctx, "GetRatedVCChannel", tableRatedVCSettings, guildID)
}

func (r *sqlSettingsRepository) SetRatedVCChannel(ctx context.Context, guildID, channelID int64) (int64, error) {
	return r.setChannel(ctx, "SetRatedVCChannel", tableRatedVCSettings, guildID, channelID)
}

func (r *sqlSettingsRepository) ClearRatedVCChannel(ctx context.Context, guildID int64) (int64, error) {
	return r.clear(ctx, "ClearRatedVCChannel", tableRatedVCSettings, guildID)
}

// channel reads the channel id of a (guild_id, channel_id) settings table.
func (r *sqlSettingsRepository) channel(ctx context.Context, op, table string, guildID int64) (int64, bool, error) {
	var channelID sql.NullInt64
	found, err := lookupOne(ctx, r.s.DB(), &channelID, `SELECT channel_id FROM `+table+` WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, false, wrap("sqlSettingsRepository."+op, err)
	}
	if !found || !channelID.Valid {
		return 0, false, nil
	}
	return channelID.Int64, true, nil
}

func (r *sqlSettingsRepository) setChannel(ctx context.Context, op, table string, guildID, channelID int64) (int64, error) {
	n, err := upsert(ctx, r.s.DB(), table, []string{"guild_id"}, []string{"guild_id", "channel_id"}, guildID, channelID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository."+op, err)
	}
	return n, nil
}

func (r *sqlSettingsRepository) clear(ctx context.Context, op, table string, guildID int64) (int64, error) {
	n, err := exec(ctx, r.s.DB(), `DELETE FROM `+table+` WHERE guild_id = ?`, guildID)
	if err != nil {
		return 0, wrap("sqlSettingsRepository."+op, err)
	}
	return n, nil
}
