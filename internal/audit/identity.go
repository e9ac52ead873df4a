package audit

import (
	"fmt"
	"log/slog"
	"os/user"
)

// Identity is the operating-system account running the hook.
type Identity struct {
	User   string
	UID    string
	Groups []string
}

// CurrentIdentity looks up the invoking user and the names of its groups.
// Groups that cannot be resolved to a name are reported by id.
func CurrentIdentity() (Identity, error) {
	u, err := user.Current()
	if err != nil {
		return Identity{}, fmt.Errorf("lookup current user: %w", err)
	}
	id := Identity{User: u.Username, UID: u.Uid}
	gids, err := u.GroupIds()
	if err != nil {
		// Not fatal: some platforms and static builds cannot list groups.
		slog.Debug("lookup groups", slog.String("user", u.Username), slog.Any("error", err))
		return id, nil
	}
	for _, gid := range gids {
		name := gid
		if g, err := user.LookupGroupId(gid); err == nil {
			name = g.Name
		}
		id.Groups = append(id.Groups, name)
	}
	return id, nil
}

// LogValue renders the identity as a slog group.
func (i Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.User),
		slog.String("uid", i.UID),
		slog.Any("groups", i.Groups),
	)
}
