package helpers

import (
	"context"
	"strconv"

	"shindensen_client/global"
	"shindensen_client/schemas"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// UserDirectory keeps a snapshot of known users in a redis hash so display
// names are available before the first lookups resolve. It never stores credentials.
type UserDirectory struct {
	client *redis.Client
	key    string
}

// NewUserDirectory connects to redis lazily
func NewUserDirectory(addr, password string, db int, key string) *UserDirectory {
	return &UserDirectory{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		key: key,
	}
}

// Load reads every user in the snapshot. Malformed entries are skipped and
// counted.
func (d *UserDirectory) Load(ctx context.Context) ([]schemas.UserInfo, int, error) {
	res, err := d.client.HGetAll(ctx, d.key).Result()
	if err != nil {
		return nil, 0, errors.Wrap(err, "redis hgetall")
	}
	users, skipped := DecodeUsers(res)
	return users, skipped, nil
}

// Save writes users into the snapshot, replacing entries with the same id
func (d *UserDirectory) Save(ctx context.Context, users []schemas.UserInfo) error {
	if len(users) == 0 {
		return nil
	}
	fields, err := EncodeUsers(users)
	if err != nil {
		return err
	}
	_, err = d.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		return pipe.HSet(ctx, d.key, fields).Err()
	})
	if err != nil {
		return errors.Wrap(err, "redis hset")
	}
	return nil
}

func (d *UserDirectory) Close() error {
	return d.client.Close()
}

// EncodeUsers converts users into hash fields keyed by id
func EncodeUsers(users []schemas.UserInfo) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(users))
	for _, u := range users {
		b, err := global.JSON.Marshal(u)
		if err != nil {
			return nil, errors.Wrapf(err, "encode user %d", u.ID)
		}
		fields[strconv.FormatInt(u.ID, 10)] = string(b)
	}
	return fields, nil
}

// DecodeUsers converts hash fields back into users and reports how many were skipped
func DecodeUsers(fields map[string]string) ([]schemas.UserInfo, int) {
	users := make([]schemas.UserInfo, 0, len(fields))
	skipped := 0
	for field, raw := range fields {
		var u schemas.UserInfo
		if err := global.JSON.UnmarshalFromString(raw, &u); err != nil {
			skipped++
			continue
		}
		if strconv.FormatInt(u.ID, 10) != field || global.Validator.Struct(u) != nil {
			skipped++
			continue
		}
		users = append(users, u)
	}
	return users, skipped
}
