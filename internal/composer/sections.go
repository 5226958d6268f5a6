package composer

const background = `Background:
CoLive was designed to explore more fulfilling and intentional ways of co-living. Over time, tensions have arisen in
routines, cleanliness, social preferences, and financial habits. The housemates are now holding a **retrospective
meeting** to decide:
- Should they continue living together?
- If so, what changes are needed to the house rules?`

const houseRules = `House Rules:
Below are the current house rules being discussed in the retrospective. Avatars may agree, disagree, or suggest
changes based on their values and experiences.

1. Quiet Time & Noise Control
- Quiet hours begin at 10 p.m. on weekdays.
- Use headphones for music or videos in shared spaces.
- Avoid loud phone or video calls in the living room.

2. Kitchen Use & Cleanliness
- Kitchen surfaces should be wiped after each use.
- No leaving dishes overnight in the sink.

3. Cleaning Responsibilities
- Trash should be taken out when it's full, without reminders.
- Everyone should contribute to weekly cleaning, no skipping.

4. Guest Rules & Personal Boundaries
- Inform others before bringing guests to the apartment.
- No overnight guests without group approval.
- Guests should stay in common areas unless agreed otherwise.

5. Shared Items & Communication
- Label personal food items and respect others' things.
- Shared condiments and items should be replaced if used up.
- Take turns buying shared essentials like toilet paper.
- Keep a shared list for restocking items.
- No borrowing others' things without asking, even small items.
- Let housemates know if you're going away for several days.
- Avoid passive-aggressive notes; communicate directly.`

// Topics is the order the meeting walks through the house rules.
var Topics = []string{
	"Quiet Time & Noise Control",
	"Kitchen Use & Cleanliness",
	"Cleaning Responsibilities",
	"Guest Rules & Personal Boundaries",
	"Shared Items & Communication",
}

const topicGuidance = `You must ensure the avatars stay focused on **one topic at a time**, starting with Topic 1. When that topic has
been sufficiently discussed, **gently transition the group to the next topic**, e.g., by having a character say:

- "Alright, maybe we should talk about the kitchen next..."
- "I feel like we've covered quiet hours. What about cleaning?"
- "That makes sense. Moving on, can we chat about the guest policy?"

Make the transition feel natural and character-appropriate. Do not skip topics or jump ahead unless explicitly
indicated in the dialogue history.`

const closing = `Conversation Closure:
Once all five topics have been discussed in order, and the avatars have shared their views or reached a consensus on
each one, you may conclude the conversation naturally with a closing line that fits the speaker, e.g.:
- "That wraps it up, I think we've covered everything."
- "Thanks for being honest. I feel better after this chat."
- "Let's revisit these in a few weeks to see how we're doing."
The final message must come from an AI-simulated avatar, never the participant. Do not continue the conversation
beyond this point.`

const privacyNote = `Note:
Each avatar has a hidden motivation that is known only to themselves. Do not reveal or reference another avatar's
hidden motivation in any way. When generating a character's dialogue, you may let their hidden motivation subtly
influence their speech or stance, but do not state it directly or make it known to others.`

const styleRules = `Dialogue Output Instructions:
- Each utterance must be returned in **structured JSON format** as a list of dialogue turns.
- Ensure that each avatar's speech reflects their unique lifestyle, stance, and hidden motivation, but do not expose
or explain that motivation explicitly.
- Avoid narrating internal thoughts or giving omniscient commentary.`
