package types

import (
	"encoding/base64"
	"mime"
	"net"
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/inputmodel/codec"
)

var (
	reHexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	reHex      = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]+$`)
	reMobile   = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)
	reUserID   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{2,63}$`)
	reMongoID  = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

func init() {
	Register("object", same(func(v any) bool { _, ok := v.(map[string]any); return ok }))
	Register("array", same(func(v any) bool { _, ok := v.([]any); return ok }))
	Register("string", same(func(v any) bool { _, ok := v.(string); return ok }))
	Register("char", stringWith(func(s string) bool { return utf8.RuneCountInString(s) == 1 }))
	Register("null", same(func(v any) bool { return v == nil }))
	Register("int", intFactory)
	Register("float", numberFactory)
	Register("number", numberFactory)
	Register("boolean", boolFactory)
	Register("date", func(strict bool) Predicate {
		return func(v any) bool {
			_, err := codec.ParseDate(v, strict)
			return err == nil
		}
	})
	Register("email", stringWith(isEmail))

	Register("md5", stringWith(hexOfLen(32)))
	Register("sha1", stringWith(hexOfLen(40)))
	Register("sha256", stringWith(hexOfLen(64)))
	Register("sha384", stringWith(hexOfLen(96)))
	Register("sha512", stringWith(hexOfLen(128)))
	Register("hex_color", stringWith(reHexColor.MatchString))
	Register("hexadecimal", stringWith(reHex.MatchString))

	Register("ipv4", stringWith(func(s string) bool {
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is4()
	}))
	Register("ipv6", stringWith(func(s string) bool {
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is6()
	}))
	Register("isbn10", stringWith(isISBN10))
	Register("isbn13", stringWith(isISBN13))
	Register("json", stringWith(func(s string) bool { return json.Valid([]byte(s)) }))
	Register("url", stringWith(isURL))
	Register("mime_type", stringWith(func(s string) bool {
		mt, _, err := mime.ParseMediaType(s)
		return err == nil && strings.Count(mt, "/") == 1 && !strings.HasSuffix(mt, "/")
	}))
	Register("mac_address", stringWith(func(s string) bool {
		_, err := net.ParseMAC(s)
		return err == nil
	}))
	Register("mobile_number", stringWith(func(s string) bool {
		return reMobile.MatchString(strings.NewReplacer(" ", "", "-", "").Replace(s))
	}))
	Register("uuid3", stringWith(uuidVersion(3)))
	Register("uuid4", stringWith(uuidVersion(4)))
	Register("uuid5", stringWith(uuidVersion(5)))
	Register("base64", stringWith(func(s string) bool {
		if s == "" {
			return false
		}
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	}))
	Register("ascii", stringWith(func(s string) bool {
		for i := 0; i < len(s); i++ {
			if s[i] >= utf8.RuneSelf {
				return false
			}
		}
		return true
	}))
	Register("user_id", stringWith(reUserID.MatchString))
	Register("mongo_id", stringWith(reMongoID.MatchString))
	Register("lat_long", stringWith(isLatLong))
}

func intFactory(strict bool) Predicate {
	return func(v any) bool {
		if _, ok := codec.Int(v); ok {
			return true
		}
		if strict {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, ok = codec.ParseInt(s)
		return ok
	}
}

func numberFactory(strict bool) Predicate {
	return func(v any) bool {
		if _, ok := codec.Float(v); ok {
			return true
		}
		if strict {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, ok = codec.ParseNumber(s)
		return ok
	}
}

func boolFactory(strict bool) Predicate {
	return func(v any) bool {
		if _, ok := v.(bool); ok {
			return true
		}
		if strict {
			return false
		}
		_, ok := codec.ParseBool(v)
		return ok
	}
}

func isEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func hexOfLen(n int) func(string) bool {
	return func(s string) bool {
		if len(s) != n {
			return false
		}
		for i := 0; i < len(s); i++ {
			c := s[i]
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
				return false
			}
		}
		return true
	}
}

func uuidVersion(ver uuid.Version) func(string) bool {
	return func(s string) bool {
		if len(s) != 36 {
			return false
		}
		u, err := uuid.Parse(s)
		return err == nil && u.Version() == ver
	}
}

func isbnDigits(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

func isISBN10(s string) bool {
	d := isbnDigits(s)
	if len(d) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		c := d[i]
		var n int
		switch {
		case c >= '0' && c <= '9':
			n = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			n = 10
		default:
			return false
		}
		sum += (10 - i) * n
	}
	return sum%11 == 0
}

func isISBN13(s string) bool {
	d := isbnDigits(s)
	if len(d) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		c := d[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if i%2 == 1 {
			n *= 3
		}
		sum += n
	}
	return sum%10 == 0
}

func isLatLong(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return false
	}
	lat, ok := codec.ParseNumber(strings.TrimSpace(parts[0]))
	if !ok || lat < -90 || lat > 90 {
		return false
	}
	lng, ok := codec.ParseNumber(strings.TrimSpace(parts[1]))
	return ok && lng >= -180 && lng <= 180
}
