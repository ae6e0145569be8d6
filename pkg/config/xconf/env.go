package xconf

import "strings"

// envKey 返回环境变量对应的配置键，返回空串表示忽略该变量。
func envKey(name, prefix, delim string, sections []string) string {
	key, ok := strings.CutPrefix(name, prefix)
	if !ok || key == "" {
		return ""
	}
	key = strings.ToLower(key)
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok && rest != "" {
			return s + delim + rest
		}
	}
	return key
}
