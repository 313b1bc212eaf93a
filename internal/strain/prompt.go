package strain

import "fmt"

// ReviewPrompt returns the conversational review opener for a rule that just
// reached the strain threshold. Each prompt offers the three resolution
// paths: phase transition, rule adjustment, or isolated exception.
func ReviewPrompt(ruleID string, overrideCount int) string {
	switch ruleID {
	case "case-isolation":
		return fmt.Sprintf(
			"You've overridden case isolation %d times this phase. That's not wrong, it might mean your study is evolving.\n\n"+
				"Quick check: Are you...\n"+
				"[A] Moving toward cross-case synthesis (ready for phase transition?)\n"+
				"[B] Finding the rule too strict for your methodology\n"+
				"[C] Just exploring, keep the rule but note the pattern\n\n"+
				"What feels right?", overrideCount)
	case "wave-isolation":
		return fmt.Sprintf(
			"You've crossed wave boundaries %d times this phase. Let's check in on this pattern.\n\n"+
				"Are you...\n"+
				"[A] Ready for cross-wave analysis (natural progression?)\n"+
				"[B] Finding temporal isolation doesn't fit your approach\n"+
				"[C] Exploring specific connections (legitimate but note it)\n\n"+
				"What's happening in your analysis?", overrideCount)
	case "stream-separation":
		return fmt.Sprintf(
			"You've integrated theory and data %d times before the synthesis phase.\n\n"+
				"Are you...\n"+
				"[A] Ready to move to synthesis (streams mature enough?)\n"+
				"[B] Finding parallel streams too artificial for your work\n"+
				"[C] Using theoretical sampling (methodologically appropriate)\n\n"+
				"How would you characterize what's happening?", overrideCount)
	}
	return fmt.Sprintf(
		"You've overridden the %s rule %d times. Let's review whether this rule fits your evolving methodology.",
		ruleID, overrideCount)
}
