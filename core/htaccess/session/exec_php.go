package session

import (
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// phpIniSystemBlacklist is the set of settings that may never be changed
// from a per-directory context, even via the non-admin php_value/php_flag
// directives.
var phpIniSystemBlacklist = map[string]bool{
	"allow_url_fopen":        true,
	"allow_url_include":      true,
	"disable_classes":        true,
	"disable_functions":      true,
	"engine":                 true,
	"expose_php":             true,
	"open_basedir":           true,
	"realpath_cache_size":    true,
	"realpath_cache_ttl":     true,
	"upload_tmp_dir":         true,
	"max_file_uploads":       true,
	"sys_temp_dir":           true,
}

// EvaluatePHP applies the php_value/php_flag/php_admin_value/php_admin_flag
// family to the session's PHP-ini record set.
func EvaluatePHP(s Session, list *directive.List) {
	if list == nil {
		return
	}
	for _, d := range list.Slice() {
		switch d.Kind {
		case directive.PhpValue, directive.PhpFlag:
			if phpIniSystemBlacklist[d.Name] {
				s.Log(LogWarn, "php_value/php_flag: %q is a PHP_INI_SYSTEM setting, cannot be set from .htaccess", d.Name)
				continue
			}
			s.SetPhpIni(PhpIniRecord{Name: d.Name, Value: d.Value, IsAdmin: false})
		case directive.PhpAdminValue, directive.PhpAdminFlag:
			s.SetPhpIni(PhpIniRecord{Name: d.Name, Value: d.Value, IsAdmin: true})
		}
	}
}
