package assist

// Canned paragraphs for the offline synthesizer.

const expansionFood = `Apples are one of the most popular and nutritious fruits worldwide. They come in many varieties, each with its own flavor, texture and color. From the crisp sweetness of Honeycrisp to the tart bite of Granny Smith, apples offer a wide range of tastes.

Beyond their taste, apples are packed with nutrients including fiber, vitamin C and antioxidants. The saying "an apple a day keeps the doctor away" reflects their health benefits, which include supporting heart health and aiding digestion.

Apples are also versatile in the kitchen, from simple snacks to desserts like apple pie, which makes them a beloved ingredient in cuisines around the world.`

const expansionLove = `Love is one of the most powerful and complex human emotions. It shows up in many forms, from romantic love between partners to the affection we feel for family, friends, or the simple pleasures in life.

When we express love for something, whether a person, an object or an experience, we acknowledge its positive effect on our well-being. That appreciation can bring joy, comfort and meaning to daily life.

The things we love often reflect our values, memories and personal connections. They become part of our identity and can anchor us during challenging times.`

const expansionAI = `Artificial Intelligence is one of the most significant technological advances of our time. It spans machine learning, natural language processing, computer vision and robotics. AI systems learn from data, make decisions and perform tasks that traditionally required human intelligence.

Applications of AI reach across healthcare, education, finance, transportation and entertainment. As the technology evolves, it promises to reshape how we work, live and interact with computers.

Key areas of development include deep learning, neural networks and automated decision-making systems that are transforming industries and opening new possibilities for innovation.`

const expansionBusiness = `In today's competitive marketplace, businesses must adapt to changing consumer demands and technological advances. Successful companies focus on innovation, customer satisfaction and operational efficiency.

Key factors for success include strategic planning, effective leadership, sound financial management and the ability to adapt to market changes. Modern businesses also need to consider digital transformation, sustainability and corporate social responsibility.

The business landscape keeps evolving with emerging technologies, changing work patterns and global economic shifts, so organizations need to stay agile and forward-thinking.`

const expansionLearning = `Learning is a lifelong journey that enriches our understanding of the world and ourselves. Whether acquiring new skills, exploring academic subjects or gaining practical knowledge, education opens doors to opportunity and personal growth.

Effective learning mixes hands-on practice, theoretical study, collaboration and reflection. Modern learning environments blend traditional methods with digital tools and resources.

The key to successful learning is staying curious, setting clear goals and being open to different perspectives. Continuous learning helps us adapt to changing circumstances and stay engaged with an evolving world.`

const expansionHealth = `Health and wellness cover physical, mental and emotional well-being. Maintaining good health takes a balanced approach including regular exercise, proper nutrition, adequate sleep and stress management.

Physical activity strengthens the body, improves cardiovascular health and lifts mood through the release of endorphins. A balanced diet provides the nutrients that fuel the body and support its normal function.

Mental wellness matters just as much and involves practices like mindfulness, social connection and pursuing activities that bring joy. A holistic approach to health builds the foundation for a vibrant, productive life.`

const expansionTravel = `Travel broadens horizons and creates lasting memories through exposure to new cultures, environments and experiences. Whether exploring distant countries or discovering hidden gems close to home, travel enriches our perspective on the world.

Planning a trip means weighing destinations, accommodation, transportation and activities against personal interests and budget. The journey itself often brings unexpected discoveries and connections with people and places.

Travel contributes to personal growth and cultural awareness. It creates stories that last a lifetime while building adaptability and confidence in new situations.`

const expansionGenericShort = `This %s represents an interesting subject worth exploring further. Understanding its various aspects can provide valuable insights and a deeper appreciation of its significance.

There are often several dimensions to consider: historical context, current relevance and future implications. Each perspective can reveal new layers of meaning.

Examining related concepts and their connections can round out our understanding and give a more complete picture of the subject.`

const expansionAIBusiness = `Artificial Intelligence has become a cornerstone of modern business strategy. Companies use AI to automate processes, improve customer experiences and gain competitive advantages. From predictive analytics to chatbots, AI applications are changing how businesses operate.

AI has the most impact on customer service automation, data analysis, process optimization, predictive maintenance and marketing personalization. Adoption keeps growing as organizations recognize its potential to drive efficiency and innovation.

Implementing AI also brings challenges, including data privacy concerns, the need for skilled talent and ensuring ethical practices. Successful adoption requires careful planning, stakeholder buy-in and ongoing evaluation of results.`

const expansionGenericLong = `This topic has several facets that merit deeper exploration. Understanding the underlying principles and broader implications can inform decision-making and future planning.

Consider examining the historical context, current trends and likely future developments related to this subject. Comparing different perspectives and approaches can reveal new opportunities and considerations.

Further research from expert sources, case studies and real-world examples could deepen understanding and suggest practical applications of these ideas.`

const improvementAIBusiness = "Artificial Intelligence has become a cornerstone of modern business strategy, transforming how companies operate and compete in today's market."
