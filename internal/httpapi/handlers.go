package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-social/internal/apperr"
	"github.com/goliatone/go-social/internal/articles"
	"github.com/goliatone/go-social/internal/messages"
	"github.com/goliatone/go-social/internal/qa"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/pkg/domain"
	"github.com/google/uuid"
)

type registerResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := a.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := a.auth.Issue(*user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{User: user, Token: token})
}

type textBody struct {
	Content string `json:"content"`
}

func (a *api) listNews(w http.ResponseWriter, r *http.Request) {
	res, err := a.news.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(res))
}

func (a *api) postNews(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := a.news.Post(r.Context(), currentUser(r), body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *api) deleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = a.news.Delete(r.Context(), currentUser(r), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) likeNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.news.Like(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) replyNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body textBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := a.news.Reply(r.Context(), currentUser(r), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	count, _ := a.news.CommentCount(r.Context(), reply.ParentID)
	writeJSON(w, http.StatusCreated, map[string]any{"reply": reply, "comments": count})
}

func (a *api) newsThread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	root, replies, err := a.news.Thread(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if replies == nil {
		replies = []domain.News{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"root": root, "replies": replies})
}

func (a *api) newsInteractions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := a.news.Interactions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) listArticles(w http.ResponseWriter, r *http.Request) {
	res, err := a.articles.ListPublished(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(res))
}

func (a *api) listDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := a.articles.ListDrafts(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (a *api) createArticle(w http.ResponseWriter, r *http.Request) {
	var in articles.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	article, err := a.articles.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (a *api) publishArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	article, err := a.articles.Publish(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

type commentBody struct {
	Body string `json:"body"`
}

func (a *api) commentArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body commentBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	comment, err := a.articles.Comment(r.Context(), currentUser(r), id, body.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (a *api) articleComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := a.articles.Comments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (a *api) askQuestion(w http.ResponseWriter, r *http.Request) {
	var in qa.AskInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := a.qa.Ask(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (a *api) listAnswered(w http.ResponseWriter, r *http.Request) {
	res, err := a.qa.ListAnswered(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(res))
}

func (a *api) listUnanswered(w http.ResponseWriter, r *http.Request) {
	res, err := a.qa.ListUnanswered(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(res))
}

func (a *api) tagCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := a.qa.TagCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (a *api) listAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	answers, err := a.qa.Answers(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (a *api) answerQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body textBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := a.qa.Answer(r.Context(), currentUser(r), id, body.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func (a *api) acceptAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := a.qa.AcceptAnswer(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type voteBody struct {
	Kind domain.TargetKind `json:"kind"`
	ID   string            `json:"id"`
	Up   bool              `json:"up"`
}

func (a *api) vote(w http.ResponseWriter, r *http.Request) {
	var body voteBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := parseTarget(string(body.Kind), body.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.qa.Vote(r.Context(), currentUser(r), target, body.Up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := a.qa.TotalVotes(r.Context(), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"voted": res.Voted, "value": res.Value, "total": total})
}

func (a *api) voteSummary(w http.ResponseWriter, r *http.Request) {
	target, err := parseTarget(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := a.qa.TotalVotes(r.Context(), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	up, err := a.qa.Upvoters(r.Context(), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	down, err := a.qa.Downvoters(r.Context(), target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":      total,
		"upvoters":   usernames(up),
		"downvoters": usernames(down),
	})
}

func (a *api) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in messages.SendInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := a.messages.Send(r.Context(), currentUser(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *api) conversation(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.messages.Conversation(r.Context(), currentUser(r), chi.URLParam(r, "username"), listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (a *api) latestConversation(w http.ResponseWriter, r *http.Request) {
	partner, err := a.messages.MostRecentConversation(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, partner)
}

func (a *api) readMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = a.messages.MarkRead(r.Context(), currentUser(r), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listNotifications(w http.ResponseWriter, r *http.Request) {
	var unread *bool
	if raw := r.URL.Query().Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, apperr.Invalid("invalid unread filter"))
			return
		}
		unread = &v
	}
	res, err := a.notifications.List(r.Context(), currentUser(r).ID, unread, listOptions(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(res))
}

func (a *api) latestNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := a.notifications.MostRecent(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *api) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.UnreadCount(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (a *api) readNotification(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkRead(r.Context(), currentUser(r).ID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *api) unreadNotification(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkUnread(r.Context(), currentUser(r).ID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (a *api) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkAllRead(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (a *api) unreadAllNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkAllUnread(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func parseTarget(kind, id string) (domain.Target, error) {
	target := domain.Target{Kind: domain.TargetKind(kind)}
	parsed, err := uuid.Parse(id)
	if err != nil || !target.Kind.Valid() {
		return domain.Target{}, apperr.Invalid("invalid vote target")
	}
	target.ID = parsed
	return target, nil
}

func usernames(list []domain.User) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.Username)
	}
	return out
}
