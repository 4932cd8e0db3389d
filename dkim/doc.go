// Package dkim implements the DKIM (RFC 6376) signing pipeline: header
// and body canonicalization, body and header hashing, and formatting of
// the DKIM-Signature header a caller prepends to the transferred message
// (§4.4 DKIM Signer). It never mutates the message; [Sign] only ever
// returns a new header line.
//
// Verification, key generation, and DNS publication of the public key
// are out of scope: the caller owns the private key material and is
// responsible for publishing the matching selector TXT record.
package dkim
