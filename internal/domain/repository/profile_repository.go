package repository

import (
	"context"
	"database/sql"
	"strings"

	"tle_userdb/internal/domain/model"
)

// ProfileRepository caches judge profiles keyed by handle.
type ProfileRepository interface {
	CacheProfile(ctx context.Context, p model.Profile) (int64, error)
	CacheProfiles(ctx context.Context, ps []model.Profile) (int64, error)
	FetchProfile(ctx context.Context, handle string) (*model.Profile, error)
}

var profileColumns = []string{
	"handle", "first_name", "last_name", "country", "city", "organization", "contribution",
	"rating", "max_rating", "last_online_time", "registration_time", "friend_of_count", "title_photo",
}

type profileRow struct {
	Handle           sql.NullString `db:"handle"`
	FirstName        sql.NullString `db:"first_name"`
	LastName         sql.NullString `db:"last_name"`
	Country          sql.NullString `db:"country"`
	City             sql.NullString `db:"city"`
	Organization     sql.NullString `db:"organization"`
	Contribution     sql.NullInt64  `db:"contribution"`
	Rating           sql.NullInt64  `db:"rating"`
	MaxRating        sql.NullInt64  `db:"max_rating"`
	LastOnlineTime   sql.NullInt64  `db:"last_online_time"`
	RegistrationTime sql.NullInt64  `db:"registration_time"`
	FriendOfCount    sql.NullInt64  `db:"friend_of_count"`
	TitlePhoto       sql.NullString `db:"title_photo"`
}

func (r profileRow) toModel() *model.Profile {
	return &model.Profile{
		Handle:           r.Handle.String,
		FirstName:        r.FirstName.String,
		LastName:         r.LastName.String,
		Country:          r.Country.String,
		City:             r.City.String,
		Organization:     r.Organization.String,
		Contribution:     int(r.Contribution.Int64),
		Rating:           fromNullInt(r.Rating),
		MaxRating:        fromNullInt(r.MaxRating),
		LastOnlineTime:   r.LastOnlineTime.Int64,
		RegistrationTime: r.RegistrationTime.Int64,
		FriendOfCount:    int(r.FriendOfCount.Int64),
		TitlePhoto:       r.TitlePhoto.String,
	}
}

func profileValues(p model.Profile) []any {
	return []any{
		p.Handle, p.FirstName, p.LastName, p.Country, p.City, p.Organization, p.Contribution,
		toNullInt(p.Rating), toNullInt(p.MaxRating), p.LastOnlineTime, p.RegistrationTime, p.FriendOfCount, p.TitlePhoto,
	}
}

func prefixed(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

type sqlProfileRepository struct {
	s Session
}

func NewSQLProfileRepository(s Session) ProfileRepository {
	return &sqlProfileRepository{s: s}
}

func (r *sqlProfileRepository) CacheProfile(ctx context.Context, p model.Profile) (int64, error) {
	n, err := upsert(ctx, r.s.DB(), "cf_user_cache", []string{"handle"}, profileColumns, profileValues(p)...)
	if err != nil {
		return 0, wrap("sqlProfileRepository.CacheProfile", err)
	}
	return n, nil
}

func (r *sqlProfileRepository) CacheProfiles(ctx context.Context, ps []model.Profile) (int64, error) {
	rows := make([][]any, len(ps))
	for i, p := range ps {
		rows[i] = profileValues(p)
	}
	n, err := upsertMany(ctx, r.s, "cf_user_cache", []string{"handle"}, profileColumns, rows)
	if err != nil {
		return 0, wrap("sqlProfileRepository.CacheProfiles", err)
	}
	return n, nil
}

// FetchProfile looks a profile up ignoring the case of handle.
func (r *sqlProfileRepository) FetchProfile(ctx context.Context, handle string) (*model.Profile, error) {
	var row profileRow
	found, err := lookupOne(ctx, r.s.DB(), &row,
		`SELECT `+strings.Join(profileColumns, ", ")+` FROM cf_user_cache WHERE UPPER(handle) = UPPER(?)`, handle)
	if err != nil {
		return nil, wrap("sqlProfileRepository.FetchProfile", err)
	}
	if !found {
		return nil, nil
	}
	return row.toModel(), nil
}
