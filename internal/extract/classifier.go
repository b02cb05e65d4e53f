package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

var (
	tagSuffixRe   = regexp.MustCompile(`^(.+?)[-_. ](?:tag|etiket|label)$`)
	indexSuffixRe = regexp.MustCompile(`^(.+?)[-_. ](\d{1,3})$`)
)

// Classify derives a file's role and its grouping stem from the filename alone.
// Product photos carry a trailing shot index ("AB100_siyah_2.jpg"), the label
// photo carries a tag marker ("AB100_siyah_etiket.jpg"); both share the stem
// that ties a candidate's files together. Anything else is Unknown and is
// treated as a product image of its own stem by the coordinator.
func Classify(filename string) (model.FileRole, string) {
	base := filepath.Base(filename)
	stem := foldLower(strings.TrimSuffix(base, filepath.Ext(base)))

	if m := tagSuffixRe.FindStringSubmatch(stem); m != nil {
		return model.RoleTag, m[1]
	}
	if m := indexSuffixRe.FindStringSubmatch(stem); m != nil {
		return model.RoleProductImage, m[1]
	}
	return model.RoleUnknown, stem
}
