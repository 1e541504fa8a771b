package knowledge

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UsersFile is the conventional location of the valid-users records,
// relative to the knowledge root.
const UsersFile = "fixtures/users.yaml"

// User is one declared test account. Secrets are never stored here; the
// password is referenced by the name of the environment variable holding it.
type User struct {
	Role        string `yaml:"role"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
	Description string `yaml:"description,omitempty"`
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// LoadUsers parses the valid-users records at path. A missing file yields
// an empty list.
func LoadUsers(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading users file: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing users file %s: %w", path, err)
	}

	for i, u := range f.Users {
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("users file %s: entry %d has no username", path, i)
		}
	}
	return f.Users, nil
}

// FindUser returns the first user with the given role.
func FindUser(users []User, role string) (User, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Role, role) {
			return u, true
		}
	}
	return User{}, false
}
