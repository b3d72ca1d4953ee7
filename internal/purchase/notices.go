package purchase

import (
	"fmt"
	"time"

	"passgate/internal/catalog"
	"passgate/internal/messenger"
)

// User-visible notice text. Failure notices echo the resolved account name
// and gamepass id so the operator can triage support requests.

func confirmationPrompt(item catalog.Item) messenger.Message {
	return messenger.Message{
		Title: fmt.Sprintf("Purchase: %s", item.Name),
		Body: fmt.Sprintf(
			"Buy the game pass, the item will be delivered after verification.\n\nPurchase link: %s",
			item.PurchaseURL()),
		Fields: []messenger.Field{
			{Name: "Gamepass ID", Value: item.GamePassID},
		},
	}
}

func verifyingNotice() messenger.Message {
	return messenger.Message{Body: "Verifying your purchase... Please wait."}
}

func usernamePrompt() messenger.Message {
	return messenger.Message{Body: "Please provide your Roblox username:"}
}

func progressNotice(attempt, total int, delay time.Duration) messenger.Message {
	return messenger.Message{
		Body: fmt.Sprintf("Verification attempt %d/%d... Checking again in %d seconds.",
			attempt, total, int(delay.Seconds())),
	}
}

func deliveryNotice(item catalog.Item) messenger.Message {
	return messenger.Message{
		Body: fmt.Sprintf("Purchase verified! Here's your item: %s", item.Name),
	}
}

func fileDelivery(item catalog.Item) messenger.Message {
	return messenger.Message{Body: item.FileURL}
}

func resolutionFailedNotice() messenger.Message {
	return messenger.Message{Body: "Could not find that Roblox username. Please try again."}
}

func verificationFailedNotice(accountName, gamePassID string) messenger.Message {
	return messenger.Message{
		Title: "Verification Failed",
		Body: "Possible reasons:\n" +
			"- You haven't purchased the game pass yet\n" +
			"- The purchase hasn't processed (can take up to 30 seconds)\n" +
			"- The gamepass ID might be incorrect\n\n" +
			"If you bought the game pass but didn't receive the file, contact the server owner.",
		Fields: []messenger.Field{
			{Name: "Your Roblox Username", Value: accountName},
			{Name: "Gamepass ID", Value: gamePassID},
		},
	}
}

func timeoutNotice() messenger.Message {
	return messenger.Message{Body: "Verification timed out. Please try again."}
}

func cancelledNotice() messenger.Message {
	return messenger.Message{Body: "Purchase cancelled."}
}

func internalErrorNotice() messenger.Message {
	return messenger.Message{Body: "An error occurred during verification. Please try again."}
}
