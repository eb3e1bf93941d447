package ticket

import "fmt"

// User-facing texts.
const (
	welcomeText = "Welcome to the Support Ticket Bot! 🎫\n\n" +
		"Available commands:\n" +
		"/newticket - Create a new support ticket\n" +
		"/cancel - Cancel ticket creation\n" +
		"/help - Show this help message"

	helpText = "🔍 Help Guide:\n\n" +
		"1. Use /newticket to start creating a ticket\n" +
		"2. Enter the merchant name when prompted\n" +
		"3. Describe your problem\n" +
		"4. Optionally add photos or videos\n" +
		"5. Type \"done\" to submit the ticket\n\n" +
		"Use /cancel at any time to cancel ticket creation"

	merchantPromptText    = "📝 Please enter the merchant name:"
	descriptionPromptText = "📝 Please describe the problem in detail:"

	informationReceivedText = "✅ Information received!\n\n" +
		"Now you can:\n" +
		"📎 Send photos or videos related to the issue (optional)\n" +
		"✍️ Type \"done\" to submit the ticket without media\n" +
		"❌ Use /cancel to cancel ticket creation"

	mediaAttachedText = "✅ Media attached successfully!\n\n" +
		"You can:\n" +
		"📎 Send more photos or videos\n" +
		"✍️ Type \"done\" to submit the ticket\n" +
		"❌ Use /cancel to cancel ticket creation"

	mediaRepromptText = "⚠️ Please either:\n" +
		"📎 Send photos/videos\n" +
		"✍️ Type \"done\" to submit\n" +
		"❌ Use /cancel to cancel"

	successText = "🎉 Success! Your ticket has been created and sent to our administrators.\n\n" +
		"Use /newticket to create another ticket."

	cancelledText       = "❌ Ticket creation cancelled.\nUse /newticket to start again."
	nothingToCancelText = "⚠️ No active ticket creation to cancel.\nUse /newticket to start a new ticket."

	noConversationText  = "⚠️ No active ticket creation found.\nUse /newticket to start a new ticket."
	mediaUnexpectedText = "⚠️ Media not expected at this stage.\nPlease follow the prompts."
)

// Failure reasons shown inside the error template.
const (
	startFailedReason     = "Failed to start bot. Please try again."
	helpFailedReason      = "Failed to show help. Please try again."
	newTicketFailedReason = "Failed to start new ticket. Please try again."
	cancelFailedReason    = "Failed to cancel ticket. Please try again."
	mediaFailedReason     = "Failed to process media. Please try again or type \"done\" to submit without it."
	dispatchFailedReason  = "Failed to create ticket. Please try again."
	turnFailedReason      = "Failed to process message. Please try again."
	confirmFailedReason   = "Your ticket was sent to support, but the confirmation could not be shown."
)

func errorText(reason string) string {
	return fmt.Sprintf("❌ Error: %s\n\nPlease try again with /newticket", reason)
}

func statsText(s Stats) string {
	text := fmt.Sprintf("📊 Stats\n\nActive conversations: %d\nTickets dispatched since start: %d", s.Active, s.Dispatched)
	if s.ArchiveEnabled {
		text += fmt.Sprintf("\nTickets archived: %d", s.Archived)
	}
	if s.Version != "" {
		text += "\nVersion: " + s.Version
	}
	return text
}
