// Package cache remembers approved access grants for the verification facade.
//
// Only positive lookups are stored. An approved request is terminal and is
// never deleted, so a cached grant cannot become wrong; it only expires. A
// miss always falls through to the access store. Certificate status is never
// cached here.
package cache

import (
	"fmt"

	id "credvault/pkg/domain"
)

const keyPrefix = "verification:grant:"

func grantKey(certID id.CertificateID, requesterID id.SubjectID) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, certID.String(), requesterID.String())
}
