package adoption

import (
	"fmt"

	"github.com/pawssion/shelter-adoption/internal/model"
)

// Notification texts emitted by request transitions. Animal names may
// be empty for rescues logged without one, so displayName falls back to
// the animal's type.

func displayName(a *model.Animal) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Type
}

func newRequestMessage(u *model.User, a *model.Animal) string {
	return fmt.Sprintf("%s requested to adopt %s.", u.FullName(), displayName(a))
}

func submittedMessage(a *model.Animal) string {
	return fmt.Sprintf("Your adoption request for %s has been submitted and is now pending approval.", displayName(a))
}

func approvedMessage(a *model.Animal, s *model.Shelter) string {
	return fmt.Sprintf("Your adoption request for %s was approved by %s.", displayName(a), s.Name)
}

func rejectedMessage(a *model.Animal, s *model.Shelter) string {
	return fmt.Sprintf("Your adoption request for %s was rejected by %s.", displayName(a), s.Name)
}

func supersededMessage(a *model.Animal) string {
	return fmt.Sprintf("Your adoption request for %s was canceled because another request was approved.", displayName(a))
}
