package youtube

import (
	"fmt"
	"strings"
)

const (
	targetCommentsSection = "comments-section"
	targetRepliesPrefix   = "comment-replies-item"
)

// continuationUpdate is what one response contributes to the queue.
type continuationUpdate struct {
	// deferred holds one group per continuation item of the comments section,
	// in response order. Each group is pushed under the queue on its own.
	deferred [][]Token
	// next holds "show more replies" buttons, in response order.
	next []Token
}

func extractContinuations(resp map[string]any) continuationUpdate {
	var up continuationUpdate
	actions := append(CollectKey(resp, "reloadContinuationItemsCommand"), CollectKey(resp, "appendContinuationItemsAction")...)
	for _, a := range actions {
		action, ok := a.(map[string]any)
		if !ok {
			continue
		}
		target := digString(action, "targetId")
		for _, it := range digSlice(action, "continuationItems") {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if target == targetCommentsSection {
				kind := TargetCommentsRoot
				if _, isThread := item["commentThreadRenderer"]; isThread {
					kind = TargetReplyThread
				}
				var group []Token
				for ep := range SearchKey(item, "continuationEndpoint") {
					if m, ok := ep.(map[string]any); ok {
						group = append(group, Token{Target: kind, Endpoint: m})
					}
				}
				if len(group) > 0 {
					up.deferred = append(up.deferred, group)
				}
			}
			if strings.HasPrefix(target, targetRepliesPrefix) {
				if _, ok := item["continuationItemRenderer"]; !ok {
					continue
				}
				btn, ok := FirstKey(item, "buttonRenderer")
				if !ok {
					continue
				}
				if cmd := digMap(btn, "command"); cmd != nil {
					up.next = append(up.next, Token{Target: TargetReplyThread, Endpoint: cmd})
				}
			}
		}
	}
	return up
}

func (up continuationUpdate) apply(q *ContinuationQueue) {
	for _, g := range up.deferred {
		q.PushDeferred(g...)
	}
	for _, t := range up.next {
		q.PushNext(t)
	}
}

func (up continuationUpdate) count() int {
	n := len(up.next)
	for _, g := range up.deferred {
		n += len(g)
	}
	return n
}

// serverErrorMessage returns the first error message the service embedded in
// a response.
func serverErrorMessage(resp map[string]any) (string, bool) {
	v, ok := FirstKey(resp, "externalErrorMessage")
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// sortMenu returns the endpoints offered by the first sort menu in resp.
func sortMenu(resp map[string]any) []Token {
	menu, ok := FirstKey(resp, "sortFilterSubMenuRenderer")
	if !ok {
		return nil
	}
	items := digSlice(menu, "subMenuItems")
	out := make([]Token, 0, len(items))
	for _, it := range items {
		ep := digMap(it, "serviceEndpoint")
		out = append(out, Token{Target: TargetSortSelect, Endpoint: ep})
	}
	return out
}
