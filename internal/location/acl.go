package location

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// Visibility is whether an exported record file can be read by anyone.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}

	return "private"
}

const (
	methodPropfind = "PROPFIND"
	methodACL      = "ACL"
	contentTypeXML = "application/xml; charset=utf-8"
)

const propfindACLBody = `<?xml version="1.0" encoding="utf-8"?>` +
	`<D:propfind xmlns:D="DAV:"><D:prop><D:acl/></D:prop></D:propfind>`

const publicACLBody = `<?xml version="1.0" encoding="utf-8"?>` +
	`<D:acl xmlns:D="DAV:" xmlns:p="urn:x-personium:xmlns">` +
	`<D:ace><D:principal><D:all/></D:principal>` +
	`<D:grant><D:privilege><D:read/></D:privilege></D:grant></D:ace>` +
	`</D:acl>`

const privateACLBody = `<?xml version="1.0" encoding="utf-8"?>` +
	`<D:acl xmlns:D="DAV:" xmlns:p="urn:x-personium:xmlns"/>`

// WebDAV multistatus shapes, only as deep as the ACL property.
type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href      string        `xml:"DAV: href"`
	Propstats []davPropstat `xml:"DAV: propstat"`
}

type davPropstat struct {
	Prop davProp `xml:"DAV: prop"`
}

type davProp struct {
	ACL davACL `xml:"DAV: acl"`
}

type davACL struct {
	ACEs []davACE `xml:"DAV: ace"`
}

type davACE struct {
	Principal davPrincipal `xml:"DAV: principal"`
	Grant     davGrant     `xml:"DAV: grant"`
}

type davPrincipal struct {
	All  *struct{} `xml:"DAV: all"`
	Href string    `xml:"DAV: href"`
}

type davGrant struct {
	Privileges []davPrivilege `xml:"DAV: privilege"`
}

type davPrivilege struct {
	Read *struct{} `xml:"DAV: read"`
	All  *struct{} `xml:"DAV: all"`
}

// isPublic reports whether any ACE grants read (or all) to everyone.
func (a davACL) isPublic() bool {
	for _, ace := range a.ACEs {
		if ace.Principal.All == nil {
			continue
		}

		for _, p := range ace.Grant.Privileges {
			if p.Read != nil || p.All != nil {
				return true
			}
		}
	}

	return false
}

// Visibility reads the ACL of the file at path.
func (c *Client) Visibility(ctx context.Context, path string) (Visibility, error) {
	header := http.Header{}
	header.Set("Depth", "0")
	header.Set("Content-Type", contentTypeXML)

	resp, err := c.Do(ctx, methodPropfind, path, header, []byte(propfindACLBody))
	if err != nil {
		return Private, fmt.Errorf("location: reading ACL: %w", err)
	}
	defer resp.Body.Close()

	var ms multistatus
	if err := xml.NewDecoder(resp.Body).Decode(&ms); err != nil {
		return Private, fmt.Errorf("location: decoding ACL: %w", err)
	}

	for _, r := range ms.Responses {
		for _, ps := range r.Propstats {
			if ps.Prop.ACL.isPublic() {
				return Public, nil
			}
		}
	}

	return Private, nil
}

// SetVisibility replaces the ACL of the file at path.
func (c *Client) SetVisibility(ctx context.Context, path string, v Visibility) error {
	body := privateACLBody
	if v == Public {
		body = publicACLBody
	}

	header := http.Header{}
	header.Set("Content-Type", contentTypeXML)

	resp, err := c.Do(ctx, methodACL, path, header, []byte(body))
	if err != nil {
		return fmt.Errorf("location: setting ACL: %w", err)
	}

	drain(resp)

	c.logger.Info("visibility changed",
		slog.String("path", path),
		slog.String("visibility", v.String()),
	)

	return nil
}

// Toggle flips the visibility of the file at path and returns the new value.
// A second Toggle of the same path while one is running returns ErrBusy.
func (c *Client) Toggle(ctx context.Context, path string) (Visibility, error) {
	if !c.busy.acquire(path) {
		return Private, ErrBusy
	}
	defer c.busy.release(path)

	current, err := c.Visibility(ctx, path)
	if err != nil {
		return Private, err
	}

	next := Public
	if current == Public {
		next = Private
	}

	if err := c.SetVisibility(ctx, path, next); err != nil {
		return current, err
	}

	return next, nil
}

// busySet tracks paths with a visibility change in progress.
type busySet struct {
	m sync.Map
}

func (b *busySet) acquire(path string) bool {
	_, loaded := b.m.LoadOrStore(path, struct{}{})
	return !loaded
}

func (b *busySet) release(path string) {
	b.m.Delete(path)
}
