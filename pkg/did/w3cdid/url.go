package w3cdid

import (
	"net/url"
	"strings"
)

// URL is a DID or DID URL such as did:sol:devnet:<key>#agent
type URL string

func (u URL) Scheme() string {
	return "did"
}

func (u URL) Method() string {
	uri, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	p := strings.SplitN(uri.Opaque, ":", 2)
	return p[0]
}

// Id returns the method specific id
func (u URL) Id() string {
	uri, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	p := strings.SplitN(uri.Opaque, ":", 2)
	if len(p) < 2 {
		return ""
	}

	return p[1]
}

func (u URL) Query() string {
	uri, _ := url.Parse(string(u))
	return uri.RawQuery
}

func (u URL) Fragment() string {
	uri, _ := url.Parse(string(u))
	return uri.Fragment
}

// DID strips any query or fragment leaving the bare DID
func (u URL) DID() URL {
	s := string(u)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	return URL(s)
}

// WithFragment returns the DID URL addressing fragment within the DID document
func (u URL) WithFragment(fragment string) URL {
	return URL(string(u.DID()) + "#" + fragment)
}
