package builtin

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Func func() string

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["guid"] = funcUUID
	r.funcs["randomUUID"] = funcUUID
	r.funcs["timestamp"] = func() string { return strconv.FormatInt(r.now().Unix(), 10) }
	r.funcs["isoTimestamp"] = func() string { return r.now().UTC().Format("2006-01-02T15:04:05.000Z") }
	r.funcs["randomInt"] = funcRandomInt
	r.funcs["randomAlphaNumeric"] = funcRandomAlphaNumeric
	r.funcs["randomBoolean"] = funcRandomBoolean
	r.funcs["randomEmail"] = funcRandomEmail
}

// Register adds or replaces the variable $name.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Has reports whether $name is known.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

var variablePattern = regexp.MustCompile(`\{\{\s*\$(\w+)\s*\}\}`)

// Resolve replaces every known {{$name}} in s. Each occurrence is evaluated
// separately, so two {{$guid}} get two values.
func (r *Registry) Resolve(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		fn, ok := r.funcs[name]
		if !ok {
			return match
		}
		return fn()
	})
}

func funcUUID() string {
	return uuid.New().String()
}

func funcRandomInt() string {
	return strconv.Itoa(rand.Intn(1001))
}

func funcRandomAlphaNumeric() string {
	return randomString(1, "abcdefghijklmnopqrstuvwxyz0123456789")
}

func funcRandomBoolean() string {
	return strconv.FormatBool(rand.Intn(2) == 1)
}

func funcRandomEmail() string {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain)
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
