package discovery

import (
	"net/url"
	"strings"
)

// Canonical нормализует ссылку, чтобы один и тот же материал давал одну строку:
// убирает фрагмент и трекинговые параметры (utm_*, *clid, mc_*, igshid),
// а также завершающий слэш непустого пути.
// Не-http(s) и нераспознанные строки возвращаются обрезанными, без изменений.
func Canonical(raw string) string {
	str := strings.TrimSpace(raw)

	u, err := url.Parse(str)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return str
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		u.RawQuery = stripTracking(u.RawQuery)
	}

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimRight(u.Path, "/")
		if u.RawPath != "" {
			u.RawPath = strings.TrimRight(u.RawPath, "/")
		}
		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u.String()
}

// stripTracking убирает трекинговые пары из сырой строки запроса.
// Порядок и экранирование остальных пар сохраняются; без трекинговых
// параметров строка возвращается как есть.
func stripTracking(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTrackingParam(key) {
			continue
		}
		kept = append(kept, pair)
	}
	if len(kept) == len(pairs) {
		return rawQuery
	}
	return strings.Join(kept, "&")
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || strings.HasSuffix(k, "clid") || strings.HasPrefix(k, "mc_") || k == "igshid"
}
